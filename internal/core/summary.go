package core

import "sort"

// MonthBucket groups transactions sharing a calendar month.
type MonthBucket struct {
	Year  int
	Month int // 1-12
	Label string
	Total Money
}

// TagBucket groups transactions sharing a tag.
type TagBucket struct {
	Tag   string
	Total Money
}

// MonthlyBuckets sums amounts per calendar month, sorted chronologically.
// Labels follow the "Jan 2006" form used on the chart axis.
func MonthlyBuckets(txs []Transaction) []MonthBucket {
	type key struct{ year, month int }
	sums := make(map[key]int64)
	for _, t := range txs {
		k := key{t.Date.Year(), int(t.Date.Month())}
		sums[k] += t.Amount.Cents
	}
	buckets := make([]MonthBucket, 0, len(sums))
	for k, cents := range sums {
		buckets = append(buckets, MonthBucket{
			Year:  k.year,
			Month: k.month,
			Label: NewDate(k.year, k.month, 1).MonthLabel(),
			Total: Money{Cents: cents},
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}

// TagBuckets sums amounts per tag. Transactions without a tag fall into
// "Others". Buckets come back sorted by descending total so donut segments
// and legends are stable run to run.
func TagBuckets(txs []Transaction) []TagBucket {
	sums := make(map[string]int64)
	for _, t := range txs {
		tag := t.Tag
		if tag == "" {
			tag = "Others"
		}
		sums[tag] += t.Amount.Cents
	}
	buckets := make([]TagBucket, 0, len(sums))
	for tag, cents := range sums {
		buckets = append(buckets, TagBucket{Tag: tag, Total: Money{Cents: cents}})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Total.Cents != buckets[j].Total.Cents {
			return buckets[i].Total.Cents > buckets[j].Total.Cents
		}
		return buckets[i].Tag < buckets[j].Tag
	})
	return buckets
}
