package pages

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dimdasci/pdfs-api/core"
)

type labelRange struct {
	start  int
	style  string
	prefix string
	first  int
}

// Labels returns display labels for count pages from the /PageLabels
// number tree, or nil when the catalog defines none.
func Labels(c *Catalog, count int) []string {
	root, err := dictOf(c.resolver, c.dict.Get("PageLabels"))
	if err != nil || root == nil {
		return nil
	}
	var ranges []labelRange
	collectLabels(c.resolver, root, &ranges, 0)
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	labels := make([]string, count)
	for i := 0; i < count; i++ {
		idx := sort.Search(len(ranges), func(k int) bool { return ranges[k].start > i }) - 1
		if idx < 0 {
			labels[i] = strconv.Itoa(i + 1)
			continue
		}
		rg := ranges[idx]
		labels[i] = rg.prefix + formatLabel(rg.style, rg.first+i-rg.start)
	}
	return labels
}

func collectLabels(r ObjectResolver, node core.Dict, out *[]labelRange, depth int) {
	if depth > maxTreeDepth {
		return
	}
	if nums, _ := arrayOf(r, node.Get("Nums")); nums != nil {
		for i := 0; i+1 < len(nums); i += 2 {
			start, ok := numberOf(r, nums[i])
			if !ok {
				continue
			}
			d, _ := dictOf(r, nums[i+1])
			rg := labelRange{start: int(start), first: 1}
			if d != nil {
				if s, ok := d.GetName("S"); ok {
					rg.style = string(s)
				}
				if p, ok := d.GetString("P"); ok {
					rg.prefix = string(p)
				}
				if st, ok := d.GetInt("St"); ok && st > 0 {
					rg.first = int(st)
				}
			}
			*out = append(*out, rg)
		}
	}
	kids, _ := arrayOf(r, node.Get("Kids"))
	for _, k := range kids {
		if d, _ := dictOf(r, k); d != nil {
			collectLabels(r, d, out, depth+1)
		}
	}
}

func formatLabel(style string, n int) string {
	switch style {
	case "D":
		return strconv.Itoa(n)
	case "r":
		return strings.ToLower(roman(n))
	case "R":
		return roman(n)
	case "a":
		return strings.ToLower(letters(n))
	case "A":
		return letters(n)
	}
	return ""
}

func roman(n int) string {
	if n <= 0 {
		return ""
	}
	vals := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var b strings.Builder
	for i, v := range vals {
		for n >= v {
			b.WriteString(syms[i])
			n -= v
		}
	}
	return b.String()
}

// letters renders 1..26 as A..Z, then AA..ZZ, AAA.. as PDF prescribes
func letters(n int) string {
	if n <= 0 {
		return ""
	}
	ch := byte('A' + (n-1)%26)
	return strings.Repeat(string(ch), (n-1)/26+1)
}
