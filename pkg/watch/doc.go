// Package watch runs unattended page monitoring jobs.
//
// A job is described by a YAML file (see JobConfig). The Runner observes the
// target page on an interval, prints each classification to the Console,
// writes the screenshots and DOM snapshots the detector recommends, and ends
// with a JSON summary in the output directory.
//
// Example job:
//
//	url: https://shop.example.com/checkout
//	interval: 15s
//	iterations: 40
//	output_dir: captures/checkout
//	capture:
//	  screenshots: true
//	  snapshots: true
//	thresholds:
//	  major:
//	    element_delta: 60
//	logging:
//	  verbosity: verbose
package watch
