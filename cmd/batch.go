package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hotelinfo/internal/model"
)

var (
	batchInput  string
	batchOutput string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve many hotels from a CSV file",
	Long: `Reads hotels from a CSV with columns name,address,city,postcode
(header row optional, name required) and writes one JSON record per hotel
in input order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		queries, err := readQueriesCSV(batchInput)
		if err != nil {
			return err
		}
		if len(queries) == 0 {
			return eris.New("batch: no hotels in input")
		}

		env, err := initEnv("batch")
		if err != nil {
			return err
		}
		defer env.Close()

		zap.L().Info("batch starting", zap.Int("hotels", len(queries)))
		results, err := env.batch.Run(cmd.Context(), queries)
		if err != nil {
			return eris.Wrap(err, "batch run")
		}

		counts := make(map[model.Status]int)
		for _, rec := range results {
			counts[rec.Status]++
		}
		for status, n := range counts {
			zap.L().Info("batch outcome",
				zap.String("status", model.DisplayLabel(string(status))),
				zap.Int("hotels", n))
		}

		out := os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrap(err, "batch: create output")
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

// readQueriesCSV parses the input file. A first row whose name column is
// literally "name" is treated as a header.
func readQueriesCSV(path string) ([]model.HotelQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open input")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var queries []model.HotelQuery
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "batch: read csv")
		}
		if len(row) == 0 {
			continue
		}

		get := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		name := get(0)
		if name == "" || (len(queries) == 0 && strings.EqualFold(name, "name")) {
			continue
		}
		queries = append(queries, model.HotelQuery{
			Name:     name,
			Address:  get(1),
			City:     get(2),
			Postcode: get(3),
		})
	}
	return queries, nil
}

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "input CSV path (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output JSON path (default stdout)")
	batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
