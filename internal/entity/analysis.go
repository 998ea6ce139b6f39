package entity

import "time"

// NoCaptionFound replaces an absent or empty caption.
const NoCaptionFound = "No caption found"

// VisualFeature names a capability requested from the vision service.
type VisualFeature string

const (
	FeatureCaption VisualFeature = "caption"
	FeatureRead    VisualFeature = "read"
)

// AnalysisOptions describes what is asked of the vision service.
type AnalysisOptions struct {
	Features             []VisualFeature
	GenderNeutralCaption bool
}

// Has reports whether f was requested.
func (o AnalysisOptions) Has(f VisualFeature) bool {
	for _, feature := range o.Features {
		if feature == f {
			return true
		}
	}
	return false
}

type Caption struct {
	Text       string
	Confidence float64
}

type Point struct {
	X int
	Y int
}

type TextWord struct {
	Text       string
	Confidence float64
}

// TextLine is one line found by text-read, in reading order.
type TextLine struct {
	Text            string
	BoundingPolygon []Point
	Words           []TextWord
}

// AnalysisResult is what the vision service returned for one image.
type AnalysisResult struct {
	Caption      *Caption // nil when the service produced no caption
	ReadLines    []TextLine
	ModelVersion string
	Width        int
	Height       int
}

// CaptionText resolves the caption shown to the user.
func (r *AnalysisResult) CaptionText() string {
	if r == nil || r.Caption == nil || r.Caption.Text == "" {
		return NoCaptionFound
	}
	return r.Caption.Text
}

// Analysis is the outcome of one run of the upload pipeline.
type Analysis struct {
	Token     string
	Filename  string
	Caption   string
	Result    *AnalysisResult // nil when served from cache
	FromCache bool
	Duration  time.Duration
}
