// Package survey loads the survey dataset into an in-memory table.
//
// # Overview
//
// The dataset is a CSV file with a header row and one row per survey. The
// columns every chart needs are:
//
//   - instrument: survey name, used for styling and labels
//   - start_year: year the survey starts observing
//   - area: sky coverage in square degrees
//   - galaxy_z_lt_2.1, galaxy_z_gt_2.1: galaxy redshift counts below/above z = 2.1
//   - star_rvs: stellar radial-velocity measurement count
//
// Any additional columns are kept. A column is numeric when every cell parses
// as a float (empty cells load as NaN), otherwise it is kept as text.
//
// # Usage
//
//	t, err := survey.Load("data/all_surveys_specs5.csv")
//	if err != nil {
//	    return err // *survey.DataLoadError
//	}
//	if err := t.Derive(survey.ColTotalRedshifts, survey.ColGalaxyZLow, survey.ColGalaxyZHigh); err != nil {
//	    return err
//	}
//	for _, r := range t.Records() {
//	    fmt.Println(r.Instrument, r.TotalRedshifts())
//	}
//
// # Errors
//
// All failures are reported as [*DataLoadError], which wraps one of
// [ErrMissingColumn], [ErrMalformed] or [ErrInvalidRecord] (or the underlying
// I/O error) so callers can use errors.Is.
package survey
