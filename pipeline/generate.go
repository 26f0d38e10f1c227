package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/mmdatafocus/hubspot_pipeline/dealgen"
	"github.com/sirupsen/logrus"
)

type GenerateResult struct {
	Created int
	Failed  int
}

// GenerateDeals fabricates count deals and posts each one through creator,
// printing one line per deal to out. A failed deal is reported and the run
// continues. With a nil creator the payloads are only printed.
func GenerateDeals(ctx context.Context, creator DealCreator, gen *dealgen.Generator, count int, out io.Writer) (GenerateResult, error) {
	var res GenerateResult
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		d := gen.Next()
		props := d.Properties()

		if creator == nil {
			b, err := json.Marshal(map[string]any{"properties": props})
			if err != nil {
				return res, err
			}
			fmt.Fprintf(out, "🧪 Deal %d (dry run): %s\n", i, b)
			continue
		}

		wr, err := creator.CreateDeal(ctx, props)
		if err != nil {
			res.Failed++
			fmt.Fprintf(out, "❌ Error with Deal %d: %v\n", i, err)
			config.WithContext(ctx).WithFields(logrus.Fields{"deal": i}).WithError(err).Warn("create deal failed")
			continue
		}
		if !wr.Created() {
			res.Failed++
			fmt.Fprintf(out, "❌ Error with Deal %d: %d - %s\n", i, wr.StatusCode, wr.Body)
			continue
		}
		res.Created++
		fmt.Fprintf(out, "✅ Deal %d created: %s - %d€ - %s€ - %v - %s - %s - %s - %s\n",
			i, d.Name, d.Amount, d.Forecast.String(), d.Probability, d.Stage, d.CompanyName,
			props["closedate"], props["createdate"])
	}
	return res, nil
}
