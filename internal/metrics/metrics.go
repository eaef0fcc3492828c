// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 指标名称
const (
	HTTPRequestsTotal   = "shifthours_http_requests_total"
	HTTPRequestDuration = "shifthours_http_request_duration_seconds"
	AggregationsTotal   = "shifthours_aggregations_total"
	AggregatedHours     = "shifthours_aggregated_hours"
	DiagnosticRunsTotal = "shifthours_diagnostic_runs_total"
	DiagnosticFindings  = "shifthours_diagnostic_findings_total"
	ExportsTotal        = "shifthours_exports_total"
	FairnessGini        = "shifthours_fairness_gini"
	DatabaseConnections = "shifthours_db_connections"
)

// labelSeparator 不会出现在合法的 UTF-8 标签值中
const labelSeparator = "\xff"

// Registry 指标注册表
type Registry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *Registry {
	once.Do(func() {
		registry = NewRegistry()
	})
	return registry
}

// NewRegistry 创建带默认指标的注册表
func NewRegistry() *Registry {
	r := &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}

	r.NewCounter(HTTPRequestsTotal, "HTTP请求总数", []string{"method", "path", "status"})
	r.NewHistogram(HTTPRequestDuration, "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0})

	r.NewCounter(AggregationsTotal, "工时汇总次数", []string{"source"})
	r.NewGauge(AggregatedHours, "最近一次汇总的总工时", []string{"source"})
	r.NewCounter(DiagnosticRunsTotal, "工时自检次数", []string{"result"})
	r.NewCounter(DiagnosticFindings, "自检发现的数据问题", []string{"type"})
	r.NewCounter(ExportsTotal, "导出次数", []string{"status"})
	r.NewGauge(FairnessGini, "最近一次汇总的工时基尼系数", []string{})
	r.NewGauge(DatabaseConnections, "数据库连接数", []string{"state"})

	return r
}

// NewCounter 创建计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counter := &Counter{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.counters[name] = counter
	return counter
}

// NewGauge 创建仪表盘
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge := &Gauge{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.gauges[name] = gauge
	return gauge
}

// NewHistogram 创建直方图
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	histogram := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = histogram
	return histogram
}

// GetCounter 获取计数器
func (r *Registry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *Registry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *Registry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 返回当前值
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Value 返回当前值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}

	// 只记入第一个满足的桶，输出时再累加
	idx := sort.SearchFloat64s(h.Buckets, value)
	h.counts[key][idx]++
	h.sums[key] += value
}

// labelKey 生成标签键
func labelKey(labels []string) string {
	return strings.Join(labels, labelSeparator)
}

// WriteTo 以Prometheus文本格式输出全部指标，按名称和标签排序
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	r.mu.RLock()
	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		c.mu.RLock()
		writeSamples(&b, c.Name, c.Help, "counter", c.Labels, c.values)
		c.mu.RUnlock()
	}
	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		g.mu.RLock()
		writeSamples(&b, g.Name, g.Help, "gauge", g.Labels, g.values)
		g.mu.RUnlock()
	}
	for _, name := range sortedKeys(r.histograms) {
		h := r.histograms[name]
		h.mu.RLock()
		h.write(&b)
		h.mu.RUnlock()
	}
	r.mu.RUnlock()

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func writeSamples(b *strings.Builder, name, help, kind string, labels []string, values map[string]float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", name, kind)
	for _, key := range sortedKeys(values) {
		fmt.Fprintf(b, "%s%s %s\n", name, braced(formatLabels(labels, key)), formatFloat(values[key]))
	}
}

func (h *Histogram) write(b *strings.Builder) {
	fmt.Fprintf(b, "# HELP %s %s\n", h.Name, h.Help)
	fmt.Fprintf(b, "# TYPE %s histogram\n", h.Name)

	for _, key := range sortedKeys(h.counts) {
		counts := h.counts[key]
		labels := formatLabels(h.Labels, key)
		prefix := labels
		if prefix != "" {
			prefix += ","
		}

		cumulative := 0
		for i, bucket := range h.Buckets {
			cumulative += counts[i]
			fmt.Fprintf(b, "%s_bucket{%sle=\"%s\"} %d\n", h.Name, prefix, formatFloat(bucket), cumulative)
		}
		cumulative += counts[len(h.Buckets)]
		fmt.Fprintf(b, "%s_bucket{%sle=\"+Inf\"} %d\n", h.Name, prefix, cumulative)
		fmt.Fprintf(b, "%s_sum%s %s\n", h.Name, braced(labels), formatFloat(h.sums[key]))
		fmt.Fprintf(b, "%s_count%s %d\n", h.Name, braced(labels), cumulative)
	}
}

// formatLabels 格式化标签
func formatLabels(names []string, key string) string {
	if len(names) == 0 {
		return ""
	}
	vals := strings.Split(key, labelSeparator)
	pairs := make([]string, len(names))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		pairs[i] = fmt.Sprintf("%s=%q", name, val)
	}
	return strings.Join(pairs, ",")
}

func braced(labels string) string {
	if labels == "" {
		return ""
	}
	return "{" + labels + "}"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Handler 返回Prometheus格式的指标HTTP处理器
func Handler() http.Handler {
	return HandlerFor(GetRegistry())
}

// HandlerFor 返回指定注册表的指标处理器
func HandlerFor(r *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.WriteTo(w)
	})
}

// RecordRequestMetrics 记录请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	r := GetRegistry()
	if counter := r.GetCounter(HTTPRequestsTotal); counter != nil {
		counter.Inc(method, path, strconv.Itoa(status))
	}
	if histogram := r.GetHistogram(HTTPRequestDuration); histogram != nil {
		histogram.Observe(duration.Seconds(), method, path)
	}
}

// RecordAggregation 记录一次工时汇总，source 为 request/database/export
func RecordAggregation(source string, totalHours, gini float64) {
	r := GetRegistry()
	if counter := r.GetCounter(AggregationsTotal); counter != nil {
		counter.Inc(source)
	}
	if gauge := r.GetGauge(AggregatedHours); gauge != nil {
		gauge.Set(totalHours, source)
	}
	if gauge := r.GetGauge(FairnessGini); gauge != nil {
		gauge.Set(gini)
	}
}

// RecordDiagnostic 记录一次自检结果
func RecordDiagnostic(ready bool, findingTypes []string) {
	r := GetRegistry()

	result := "ready"
	if !ready {
		result = "failed"
	}
	if counter := r.GetCounter(DiagnosticRunsTotal); counter != nil {
		counter.Inc(result)
	}
	if counter := r.GetCounter(DiagnosticFindings); counter != nil {
		for _, t := range findingTypes {
			counter.Inc(t)
		}
	}
}

// RecordExport 记录导出结果，status 为 success/blocked/error
func RecordExport(status string) {
	if counter := GetRegistry().GetCounter(ExportsTotal); counter != nil {
		counter.Inc(status)
	}
}

// SetDatabaseConnections 记录连接池状态
func SetDatabaseConnections(inUse, idle int) {
	if gauge := GetRegistry().GetGauge(DatabaseConnections); gauge != nil {
		gauge.Set(float64(inUse), "in_use")
		gauge.Set(float64(idle), "idle")
	}
}
