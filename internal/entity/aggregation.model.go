package entity

import "strings"

type AggregationFunction string

const (
	AggSum     AggregationFunction = "sum"
	AggMean    AggregationFunction = "mean"
	AggMedian  AggregationFunction = "median"
	AggMax     AggregationFunction = "max"
	AggMin     AggregationFunction = "min"
	AggCount   AggregationFunction = "count"
	AggNunique AggregationFunction = "nunique"
	AggStd     AggregationFunction = "std"
	AggVar     AggregationFunction = "var"
)

// AggregationFunctions lists every supported function in display order.
func AggregationFunctions() []AggregationFunction {
	return []AggregationFunction{AggSum, AggMean, AggMedian, AggMax, AggMin, AggCount, AggNunique, AggStd, AggVar}
}

func (f AggregationFunction) Valid() bool {
	switch f {
	case AggSum, AggMean, AggMedian, AggMax, AggMin, AggCount, AggNunique, AggStd, AggVar:
		return true
	}
	return false
}

type AggregationFeature struct {
	Column    string                `json:"column" validate:"required"`
	Functions []AggregationFunction `json:"functions" validate:"dive,oneof=sum mean median max min count nunique std var"`
}

// OutputColumns returns the engineered column names this feature produces,
// one per function, in activation order.
func (f AggregationFeature) OutputColumns(prefix string) []string {
	out := make([]string, 0, len(f.Functions))
	for _, fn := range f.Functions {
		out = append(out, prefix+f.Column+"_"+string(fn))
	}
	return out
}

type AggregationConfig struct {
	ID            string               `json:"id"`
	TableName     string               `json:"tableName" validate:"required"`
	GroupByColumn string               `json:"groupByColumn" validate:"required"`
	Prefix        string               `json:"prefix"`
	Features      []AggregationFeature `json:"features" validate:"dive"`
}

func (a AggregationConfig) OutputColumns() []string {
	var out []string
	for _, feature := range a.Features {
		out = append(out, feature.OutputColumns(a.Prefix)...)
	}
	return out
}

// DefaultPrefix derives the output column prefix for a table, e.g.
// "transactions" becomes "TRANSACTIONS_".
func DefaultPrefix(tableName string) string {
	return strings.ToUpper(tableName) + "_"
}
