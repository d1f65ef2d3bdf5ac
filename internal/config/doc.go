// Package config provides configuration structures and utilities for htmlgrader.
// It defines the options that control where checks and documents are read
// from, how remote documents are fetched, and how the report is written.
package config
