// Package ingest runs the batch jobs that build and use the PSGC reference
// set: loading the datafile with resolved long names, geocoding each
// location, and titling stored earthquakes.
package ingest
