package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/hotelinfo/internal/model"
)

var (
	lookupAddress  string
	lookupCity     string
	lookupPostcode string
	lookupNoCache  bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <hotel name>",
	Short: "Resolve one hotel's website, phone and room count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv("lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.orch.Lookup(cmd.Context(), model.HotelQuery{
			Name:     args[0],
			Address:  lookupAddress,
			City:     lookupCity,
			Postcode: lookupPostcode,
		}, lookupNoCache)
		if err != nil {
			return eris.Wrap(err, "lookup")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupAddress, "address", "", "street address to disambiguate")
	lookupCmd.Flags().StringVar(&lookupCity, "city", "", "city or town")
	lookupCmd.Flags().StringVar(&lookupPostcode, "postcode", "", "UK postcode")
	lookupCmd.Flags().BoolVar(&lookupNoCache, "no-cache", false, "bypass the cache and resolve fresh")
	rootCmd.AddCommand(lookupCmd)
}
