// Package model contains the content records published as data/*.json and the
// contact submission passed between layers.
package model
