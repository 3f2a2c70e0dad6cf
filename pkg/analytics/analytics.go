// Package analytics aggregates already-loaded console records into the
// name/value pairs the chart layer renders. All aggregation is client-side;
// the chart layer never sees raw records.
package analytics

import (
	"fmt"
	"sort"

	"github.com/mmcloughlin/geohash"
)

// Record is one chart datum.
type Record struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CountBy tallies items by key and returns one record per distinct key,
// sorted by descending value with ties broken by name.
func CountBy[T any](items []T, key func(T) string) []Record {
	counts := make(map[string]float64)
	for _, item := range items {
		counts[key(item)]++
	}
	return sortedRecords(counts)
}

// SumBy accumulates a numeric dimension per key, e.g. visit counts per
// country. Sorted like CountBy.
func SumBy[T any](items []T, key func(T) string, value func(T) float64) []Record {
	sums := make(map[string]float64)
	for _, item := range items {
		sums[key(item)] += value(item)
	}
	return sortedRecords(sums)
}

// AvgBy averages a numeric dimension per key, e.g. query duration per route.
// Sorted like CountBy.
func AvgBy[T any](items []T, key func(T) string, value func(T) float64) []Record {
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for _, item := range items {
		sums[key(item)] += value(item)
		counts[key(item)]++
	}

	avgs := make(map[string]float64, len(sums))
	for k, sum := range sums {
		avgs[k] = sum / counts[k]
	}
	return sortedRecords(avgs)
}

// TopN keeps the n largest records and folds the rest into an "other"
// record. The input must already be sorted descending, as CountBy and SumBy
// return it.
func TopN(records []Record, n int) []Record {
	if n <= 0 || len(records) <= n {
		return records
	}

	top := append([]Record(nil), records[:n]...)
	var rest float64
	for _, record := range records[n:] {
		rest += record.Value
	}
	return append(top, Record{Name: "other", Value: rest})
}

// Buckets histograms values into fixed-width ranges starting at zero. Every
// bucket appears in the result so charts render a stable axis. Values below
// zero clamp into the first bucket, values at or past the top into the last.
func Buckets(values []float64, width float64, buckets int) []Record {
	if buckets <= 0 || width <= 0 {
		return nil
	}

	records := make([]Record, buckets)
	for i := range records {
		lo := float64(i) * width
		records[i].Name = fmt.Sprintf("%g-%g", lo, lo+width)
	}

	for _, value := range values {
		idx := int(value / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= buckets {
			idx = buckets - 1
		}
		records[idx].Value++
	}

	return records
}

// DensityCells buckets item coordinates into geohash cells of the given
// precision, skipping items whose coords func reports false. Sorted by
// descending count.
func DensityCells[T any](items []T, coords func(T) (lat, lon float64, ok bool), precision uint) []Record {
	counts := make(map[string]float64)
	for _, item := range items {
		lat, lon, ok := coords(item)
		if !ok {
			continue
		}
		counts[geohash.EncodeWithPrecision(lat, lon, precision)]++
	}
	return sortedRecords(counts)
}

func sortedRecords(counts map[string]float64) []Record {
	records := make([]Record, 0, len(counts))
	for name, value := range counts {
		records = append(records, Record{Name: name, Value: value})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Value != records[j].Value {
			return records[i].Value > records[j].Value
		}
		return records[i].Name < records[j].Name
	})

	return records
}
