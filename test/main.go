package main

import (
	"fmt"

	"github.com/henderiw/runlist/pkg/blocktable"
	"github.com/henderiw/runlist/pkg/runlist"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
)

var claims = []struct {
	b, e   uint64
	labels map[string]string
}{
	{b: 100, e: 200, labels: map[string]string{"owner": "vol1"}},
	{b: 200, e: 300, labels: map[string]string{"owner": "vol2"}},
	{b: 1000, e: 2000, labels: map[string]string{"owner": "vol3"}},
}

func main() {
	used := runlist.New(runlist.Numeric[uint64]())
	for _, c := range claims {
		if err := used.AddRun(c.b, c.e); err != nil {
			panic(err)
		}
	}
	fmt.Println("used 150", used.Has(150))
	fmt.Println("used runs", used.Count())

	// the same runs answer free queries after flipping polarity
	used.Invert()
	fmt.Println("free 150", used.Has(150))
	fmt.Println("free 500", used.Has(500))

	bt, err := blocktable.New(4096, nil)
	if err != nil {
		panic(err)
	}
	for _, c := range claims {
		if err := bt.Claim(c.b, c.e, c.labels); err != nil {
			panic(err)
		}
	}
	if err := bt.Claim(150, 250, map[string]string{"owner": "vol4"}); err != nil {
		fmt.Println(err)
	}

	sel, err := GetLabelSelector(map[string]string{"owner": "vol1"})
	if err != nil {
		panic(err)
	}
	for b, d := range bt.GetByLabel(sel) {
		fmt.Println("claim at", b, "labels", d)
	}
	fmt.Println("free range 300-1000", bt.IsFree(300, 1000))
}

func GetLabelSelector(l map[string]string) (labels.Selector, error) {
	fullselector := labels.NewSelector()
	for k, v := range l {
		req, err := labels.NewRequirement(k, selection.Equals, []string{v})
		if err != nil {
			return nil, err
		}
		fullselector = fullselector.Add(*req)
	}
	return fullselector, nil
}
