//go:build analysis

// Command analysis renders empirical distributions of the scheme as
// an HTML page: the ciphertext spread of an exhaustively encrypted
// small domain, and the hypergeometric sampler's histogram against
// its analytic mean. Randomness is drawn from a keyed PRNG so a page
// reproduces bit-for-bit.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/tuneinsight/lattigo/v4/utils"

	"BCLO-OPE/blockrng"
	"BCLO-OPE/hgd"
	"BCLO-OPE/ope"
)

type summaryStats struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Median float64
	Max    float64
}

func computeStats(x []float64) summaryStats {
	n := len(x)
	if n == 0 {
		return summaryStats{}
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	var m float64
	for _, v := range x {
		m += v
	}
	m /= float64(n)
	var m2 float64
	for _, v := range x {
		d := v - m
		m2 += d * d
	}
	std := 0.0
	if n > 1 {
		std = math.Sqrt(m2 / float64(n-1))
	}
	return summaryStats{Count: n, Mean: m, Std: std, Min: cp[0], Median: cp[n/2], Max: cp[n-1]}
}

func computeHistogram(values []float64, nbins int) (edges []float64, counts []int) {
	if len(values) == 0 {
		return []float64{0, 1}, []int{0}
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	minv, maxv := cp[0], cp[len(cp)-1]
	if nbins < 1 {
		nbins = 1
	}
	width := (maxv - minv) / float64(nbins)
	if width <= 0 {
		width = 1
	}
	edges = make([]float64, nbins+1)
	for i := 0; i <= nbins; i++ {
		edges[i] = minv + float64(i)*width
	}
	counts = make([]int, nbins)
	for _, v := range values {
		idx := int(math.Floor((v - minv) / width))
		if idx < 0 {
			idx = 0
		}
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx]++
	}
	return
}

func toBarItems(vals []int) []opts.BarData {
	out := make([]opts.BarData, len(vals))
	for i, v := range vals {
		out[i] = opts.BarData{Value: v}
	}
	return out
}

func newHistogramChart(title, subtitle string, values []float64, nbins int) *charts.Bar {
	edges, counts := computeHistogram(values, nbins)
	xLabels := make([]string, nbins)
	for i := 0; i < nbins; i++ {
		center := 0.5 * (edges[i] + edges[i+1])
		xLabels[i] = fmt.Sprintf("%.3f", center)
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xLabels).
		AddSeries("count", toBarItems(counts)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

// ciphertextSpread encrypts every plaintext of a pbits-wide domain
// and returns the ciphertext positions normalised into [0, 1).
func ciphertextSpread(pw string, pbits, cbits int) ([]float64, error) {
	o, err := ope.New([]byte(pw), pbits, cbits)
	if err != nil {
		return nil, err
	}
	total := 1 << uint(pbits)
	scale := math.Pow(2, float64(cbits))
	out := make([]float64, 0, total)
	for i := 0; i < total; i++ {
		ct, err := o.Encrypt(big.NewInt(int64(i)))
		if err != nil {
			return nil, err
		}
		f, _ := new(big.Float).SetInt(ct).Float64()
		out = append(out, f/scale)
	}
	return out, nil
}

// hgdSamples draws the sampler repeatedly at (k, n1, n2), reseeding
// the block RNG from the keyed PRNG before each draw.
func hgdSamples(seed []byte, k, n1, n2 int64, runs int) ([]float64, error) {
	prng, err := utils.NewKeyedPRNG(seed)
	if err != nil {
		return nil, err
	}
	key := make([]byte, 16)
	if _, err := prng.Read(key); err != nil {
		return nil, err
	}
	rng, err := blockrng.New(key)
	if err != nil {
		return nil, err
	}
	ctr := make([]byte, blockrng.BlockSize)
	out := make([]float64, 0, runs)
	for i := 0; i < runs; i++ {
		if _, err := prng.Read(ctr); err != nil {
			return nil, err
		}
		rng.SetCtr(ctr)
		v, err := hgd.Sample(big.NewInt(k), big.NewInt(n1), big.NewInt(n2), rng)
		if err != nil {
			return nil, err
		}
		f, _ := new(big.Float).SetInt(v).Float64()
		out = append(out, f)
	}
	return out, nil
}

func main() {
	pw := flag.String("pw", "hello world", "passphrase for the spread plot")
	pbits := flag.Int("p", 8, "plaintext bits for the spread plot")
	cbits := flag.Int("c", 16, "ciphertext bits for the spread plot")
	runs := flag.Int("runs", 5000, "HGD draws")
	k := flag.Int64("k", 512, "HGD sample size")
	n1 := flag.Int64("n1", 256, "HGD white count")
	n2 := flag.Int64("n2", 768, "HGD black count")
	outDir := flag.String("out", "Measure_Reports", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	spread, err := ciphertextSpread(*pw, *pbits, *cbits)
	if err != nil {
		log.Fatalf("spread: %v", err)
	}
	st := computeStats(spread)
	spreadChart := newHistogramChart(
		fmt.Sprintf("ciphertext spread (p=%d, c=%d)", *pbits, *cbits),
		fmt.Sprintf("n=%d, mean=%.4f, std=%.4f", st.Count, st.Mean, st.Std),
		spread, 64)

	samples, err := hgdSamples([]byte(*pw), *k, *n1, *n2, *runs)
	if err != nil {
		log.Fatalf("hgd: %v", err)
	}
	hs := computeStats(samples)
	analytic := float64(*k) * float64(*n1) / float64(*n1+*n2)
	hgdChart := newHistogramChart(
		fmt.Sprintf("HGD(k=%d, n1=%d, n2=%d)", *k, *n1, *n2),
		fmt.Sprintf("runs=%d, empirical mean=%.3f, analytic mean=%.3f", hs.Count, hs.Mean, analytic),
		samples, 50)

	page := components.NewPage()
	page.AddCharts(spreadChart, hgdChart)

	ts := time.Now().Format("20060102_150405")
	htmlPath := filepath.Join(*outDir, fmt.Sprintf("ope_histograms_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Histogram page:", htmlPath)
}
