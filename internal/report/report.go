package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"resp-bench/internal/bench"
)

// csvHeader はCSVファイルの列定義
// 既存ファイルへは追記し、ヘッダは新規作成時のみ書く
var csvHeader = []string{
	"test_name",
	"operations",
	"total_time_sec",
	"qps",
	"clients",
	"ops_per_client",
	"errors",
	"timestamp",
}

// AppendCSV はベンチマーク結果をCSVファイルに追記する
// ファイルが存在しない場合は作成してヘッダ行を書く
func AppendCSV(path string, results []bench.Result) error {
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	now := time.Now().Format(time.RFC3339)
	for _, r := range results {
		record := []string{
			r.TestName,
			strconv.FormatUint(r.Operations, 10),
			strconv.FormatFloat(r.Duration.Seconds(), 'f', 3, 64),
			strconv.FormatFloat(r.Throughput, 'f', 1, 64),
			strconv.Itoa(r.Clients),
			strconv.Itoa(r.OpsPerClient),
			strconv.FormatUint(r.Errors, 10),
			now,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// SummaryTable はベンチマーク結果を固定幅のテキスト表に整形する
func SummaryTable(results []bench.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%-16s %12s %10s %12s %8s %8s\n",
		"TEST", "OPERATIONS", "TIME", "OPS/SEC", "CLIENTS", "ERRORS"))
	b.WriteString(strings.Repeat("-", 72))
	b.WriteString("\n")

	for _, r := range results {
		b.WriteString(fmt.Sprintf("%-16s %12d %9.2fs %12.1f %8d %8d\n",
			r.TestName,
			r.Operations,
			r.Duration.Seconds(),
			r.Throughput,
			r.Clients,
			r.Errors))
	}

	return b.String()
}
