package explorer

import (
	"fmt"
	"sort"

	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/summary"
)

const lowStock = 10

// countBy renders "label value: n" facts in value order.
func countBy[T any](items []T, label string, key func(T) string) []string {
	counts := map[string]int{}
	for _, it := range items {
		counts[key(it)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	facts := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if name == "" {
			name = "(none)"
		}
		facts = append(facts, fmt.Sprintf("%s %s: %d", label, name, counts[k]))
	}
	return facts
}

func digestUsers(recs []UserRecord) summary.Request {
	facts := countBy(recs, "role", func(r UserRecord) string { return string(r.Role) })
	facts = append(facts, countBy(recs, "status", func(r UserRecord) string { return r.Status })...)
	return summary.Request{Collection: string(KindUsers), Count: len(recs), Facts: facts}
}

func digestProducts(recs []models.Product) summary.Request {
	facts := countBy(recs, "category", func(p models.Product) string { return p.Category })
	var stock, low int
	var value float64
	for _, p := range recs {
		stock += p.Stock
		value += p.Price * float64(p.Stock)
		if p.Stock < lowStock {
			low++
		}
	}
	facts = append(facts,
		fmt.Sprintf("total stock: %d", stock),
		fmt.Sprintf("inventory value: %.2f", value),
		fmt.Sprintf("products with fewer than %d in stock: %d", lowStock, low),
	)
	if len(recs) > 0 {
		facts = append(facts, fmt.Sprintf("average price: %.2f", averagePrice(recs)))
	}
	return summary.Request{Collection: string(KindProducts), Count: len(recs), Facts: facts}
}

func averagePrice(recs []models.Product) float64 {
	var sum float64
	for _, p := range recs {
		sum += p.Price
	}
	return sum / float64(len(recs))
}

func digestDevices(recs []DeviceRecord) summary.Request {
	facts := countBy(recs, "status", func(r DeviceRecord) string { return r.Status })
	return summary.Request{Collection: string(KindDevices), Count: len(recs), Facts: facts}
}
