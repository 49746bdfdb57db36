package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	vmetrics "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkoehler/jKV/cmd/util"
	"github.com/tkoehler/jKV/lib/ds"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the jKV engine",
		Long:    util.WrapString("Runs set/get/query/flush micro-benchmarks against the configured datastore file using a disposable key prefix."),
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix   = "__perf"
	perfNumEntries  = 10000
	perfValueSizeB  = 128
	perfQueryRounds = 100
)

func init() {
	// add flags
	key := "entries"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("How many keys to use for the benchmark"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 128, util.WrapString("Size of each benchmark value in bytes"))
	key = "query-rounds"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many queries to run for the query benchmark"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "dump-metrics"
	perfTestCmd.Flags().Bool(key, false, util.WrapString("Dump the engine's Prometheus metrics after the run"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumEntries = viper.GetInt("entries")
	perfValueSizeB = viper.GetInt("value-size")
	perfQueryRounds = viper.GetInt("query-rounds")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the jKV engine")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("File: %s\n", util.GetStorePath())
	fmt.Printf("Entries: %d\n", perfNumEntries)
	fmt.Printf("Value size: %d bytes\n", perfValueSizeB)
	fmt.Println()

	registry := gometrics.NewRegistry()
	value := make(ds.Bytes, perfValueSizeB)
	for i := range value {
		value[i] = byte(i)
	}

	// cleanup of the disposable keys, also on early exit
	defer func() {
		for i := 0; i < perfNumEntries; i++ {
			_, _ = store.Delete(perfKey(i))
		}
		_ = store.Flush()
	}()

	// set
	setTimer := gometrics.GetOrRegisterTimer("set", registry)
	for i := 0; i < perfNumEntries; i++ {
		i := i
		setTimer.Time(func() {
			_ = store.Set(perfKey(i), value)
		})
	}
	printTimer("set", setTimer)

	// get
	getTimer := gometrics.GetOrRegisterTimer("get", registry)
	for i := 0; i < perfNumEntries; i++ {
		i := i
		getTimer.Time(func() {
			_, _, _ = store.Get(perfKey(i))
		})
	}
	printTimer("get", getTimer)

	// query (prefix + order + limit over the benchmark keys)
	queryTimer := gometrics.GetOrRegisterTimer("query", registry)
	for i := 0; i < perfQueryRounds; i++ {
		queryTimer.Time(func() {
			_, _ = store.Query(ds.Query[ds.Bytes]{
				Prefix: perfKeyPrefix,
				Orders: []ds.Order{ds.OrderByKeyAsc},
				Limit:  100,
			})
		})
	}
	printTimer("query", queryTimer)

	// flush
	flushTimer := gometrics.GetOrRegisterTimer("flush", registry)
	flushTimer.Time(func() {
		if err := store.Flush(); err != nil {
			fmt.Printf("(flush) - error: %v\n", err)
		}
	})
	printTimer("flush", flushTimer)

	// optional CSV export
	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeCSV(csvPath, registry); err != nil {
			return err
		}
		fmt.Printf("results saved to %s\n", csvPath)
	}

	// optional engine metrics dump
	if viper.GetBool("dump-metrics") {
		fmt.Println()
		fmt.Println("Engine metrics:")
		vmetrics.WritePrometheus(os.Stdout, false)
	}

	return nil
}

func perfKey(i int) string {
	return perfKeyPrefix + strconv.Itoa(i)
}

func printTimer(name string, t gometrics.Timer) {
	fmt.Printf("%-8s count=%d mean=%.0fns p95=%.0fns p99=%.0fns rate=%.0f/s\n",
		name, t.Count(), t.Mean(), t.Percentile(0.95), t.Percentile(0.99), t.RateMean())
}

func writeCSV(path string, registry gometrics.Registry) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"benchmark", "count", "mean_ns", "p95_ns", "p99_ns", "rate_per_s"}); err != nil {
		return err
	}

	var writeErr error
	registry.Each(func(name string, metric interface{}) {
		t, ok := metric.(gometrics.Timer)
		if !ok {
			return
		}
		if err := w.Write([]string{
			name,
			strconv.FormatInt(t.Count(), 10),
			strconv.FormatFloat(t.Mean(), 'f', 0, 64),
			strconv.FormatFloat(t.Percentile(0.95), 'f', 0, 64),
			strconv.FormatFloat(t.Percentile(0.99), 'f', 0, 64),
			strconv.FormatFloat(t.RateMean(), 'f', 2, 64),
		}); err != nil && writeErr == nil {
			writeErr = err
		}
	})

	return writeErr
}
