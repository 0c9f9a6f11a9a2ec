// Package pkg holds the libraries behind surveyplot.
//
// # Overview
//
// Surveyplot compares spectroscopic surveys on log-scale scatter charts. A
// run reads a survey table, derives the total redshift count per survey and
// renders one of two predefined chart families:
//
//   - correlations: three panels plotting survey metrics against total redshifts
//   - timeline: four panels plotting survey metrics against start year
//
// # Packages
//
//   - [survey]: CSV loading, validation and derived columns
//   - [chart]: panel specs, glyphs, styling and figure encoding (PDF, PNG, SVG)
//   - [pipeline]: load, render and write with artifact caching
//   - [cache]: file, Redis and MongoDB artifact stores
//   - [publish]: S3-compatible upload of written figures
//   - [server]: HTTP routes for the survey table and rendered charts
//   - [errors]: API error codes
//   - [observability]: hooks for load, render, cache and HTTP events
//   - [buildinfo]: version stamping
//
// [survey]: github.com/matzehuels/surveyplot/pkg/survey
// [chart]: github.com/matzehuels/surveyplot/pkg/chart
// [pipeline]: github.com/matzehuels/surveyplot/pkg/pipeline
// [cache]: github.com/matzehuels/surveyplot/pkg/cache
// [publish]: github.com/matzehuels/surveyplot/pkg/publish
// [server]: github.com/matzehuels/surveyplot/pkg/server
// [errors]: github.com/matzehuels/surveyplot/pkg/errors
// [observability]: github.com/matzehuels/surveyplot/pkg/observability
// [buildinfo]: github.com/matzehuels/surveyplot/pkg/buildinfo
package pkg
