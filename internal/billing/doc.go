// Package billing turns a fetched snapshot of bills, students and cash ledger
// entries into the views the dashboard shows: filtered bill lists, arrears
// (tunggakan) totals, statistics and pages.
//
// Every function here is pure. Callers re-run them over a whole snapshot
// whenever the snapshot or the filter input changes; nothing is cached.
package billing
