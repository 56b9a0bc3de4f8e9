package constants

// SourceKind identifies which pipeline stage produced a candidate record.
type SourceKind string

const (
	SourceProbe       SourceKind = "probe"
	SourceHTMLProfile SourceKind = "htmlProfile"
	SourcePDFText     SourceKind = "pdfText"
	SourcePDFTable    SourceKind = "pdfTable"
)

// Strategy names one member of the document extraction ensemble.
type Strategy string

const (
	StrategyText         Strategy = "text"
	StrategyLayoutText   Strategy = "layoutText"
	StrategyTableEngineA Strategy = "tableEngineA"
	StrategyTableEngineB Strategy = "tableEngineB"
	StrategyOCR          Strategy = "ocr"
)

// AllStrategies is the fixed order outcomes are reported in.
var AllStrategies = []Strategy{
	StrategyText,
	StrategyLayoutText,
	StrategyTableEngineA,
	StrategyTableEngineB,
	StrategyOCR,
}

// IsTable reports whether the strategy yields tables rather than page text.
func (s Strategy) IsTable() bool {
	return s == StrategyTableEngineA || s == StrategyTableEngineB
}
