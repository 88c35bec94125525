// pkg/aggregate/aggregate.go
package aggregate

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rsbsa-tools/registry-triage/pkg/finding"
	"github.com/rsbsa-tools/registry-triage/pkg/model"
)

// UnknownBucket is the grouping value for records missing a municipality
// or barangay. They are bucketed, never dropped, so no record disappears
// from the totals.
const UnknownBucket = "UNKNOWN"

// Brackets holds the age bracket boundaries in whole completed years.
type Brackets struct {
	YouthMin  int
	YouthMax  int
	SeniorMin int
}

// DefaultBrackets returns the report's standard brackets:
// Youth 15-30, Working Age 31-59, Senior 60+.
func DefaultBrackets() Brackets {
	return Brackets{YouthMin: 15, YouthMax: 30, SeniorMin: 60}
}

// Config parameterizes a summary run.
type Config struct {
	// ReferenceDate is the "as of" date ages are computed against.
	ReferenceDate time.Time
	Brackets      Brackets
}

// Summary is one output row of the per-barangay report.
type Summary struct {
	Municipality     string
	Barangay         string
	Records          int
	Farmers          int
	Farmworkers      int
	Fisherfolk       int
	Male             int
	Female           int
	DistinctAgencies int
	Youth            int
	WorkingAge       int
	Senior           int
	TotalAreaHa      float64
	AreaByCommodity  map[finding.Commodity]float64
}

// Aggregator computes per-(municipality, barangay) summaries.
type Aggregator struct {
	config Config
	logger *zap.Logger
}

// NewAggregator creates an aggregator. A zero ReferenceDate defaults to
// the current day; zero brackets default to the standard report brackets.
func NewAggregator(config Config, logger *zap.Logger) *Aggregator {
	if config.ReferenceDate.IsZero() {
		config.ReferenceDate = time.Now()
	}
	if config.Brackets == (Brackets{}) {
		config.Brackets = DefaultBrackets()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{config: config, logger: logger}
}

type accumulator struct {
	Summary
	agencies map[string]bool
}

// Summarize groups the dataset by (municipality, barangay) and computes
// the report counters, sorted by municipality then barangay.
func (a *Aggregator) Summarize(ds *model.Dataset) []Summary {
	groups := make(map[[2]string]*accumulator)

	for _, row := range ds.Rows {
		mun := ds.Text(row, model.FieldMunicipality)
		bgy := ds.Text(row, model.FieldBarangay)
		if mun == "" {
			mun = UnknownBucket
		}
		if bgy == "" {
			bgy = UnknownBucket
		}

		key := [2]string{mun, bgy}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{
				Summary: Summary{
					Municipality:    mun,
					Barangay:        bgy,
					AreaByCommodity: make(map[finding.Commodity]float64),
				},
				agencies: make(map[string]bool),
			}
			groups[key] = acc
		}

		a.tally(ds, row, acc)
	}

	summaries := make([]Summary, 0, len(groups))
	for _, acc := range groups {
		acc.DistinctAgencies = len(acc.agencies)
		summaries = append(summaries, acc.Summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Municipality != summaries[j].Municipality {
			return summaries[i].Municipality < summaries[j].Municipality
		}
		return summaries[i].Barangay < summaries[j].Barangay
	})

	a.logger.Info("Aggregated dataset",
		zap.String("dataset", ds.Name),
		zap.Int("rows", ds.Len()),
		zap.Int("groups", len(summaries)))

	return summaries
}

func (a *Aggregator) tally(ds *model.Dataset, row model.Record, acc *accumulator) {
	acc.Records++

	if model.ParseFlag(ds.Value(row, model.FieldFarmer)) {
		acc.Farmers++
	}
	if model.ParseFlag(ds.Value(row, model.FieldFarmworker)) {
		acc.Farmworkers++
	}
	if model.ParseFlag(ds.Value(row, model.FieldFisherfolk)) {
		acc.Fisherfolk++
	}

	switch strings.ToUpper(ds.Text(row, model.FieldGender)) {
	case "MALE", "M":
		acc.Male++
	case "FEMALE", "F":
		acc.Female++
	}

	for _, token := range strings.Split(ds.Text(row, model.FieldAgency), ",") {
		token = strings.ToUpper(strings.TrimSpace(token))
		if token != "" {
			acc.agencies[token] = true
		}
	}

	if years, ok := a.ageYears(ds.Value(row, model.FieldBirthday)); ok {
		b := a.config.Brackets
		switch {
		case years >= b.SeniorMin:
			acc.Senior++
		case years > b.YouthMax:
			acc.WorkingAge++
		case years >= b.YouthMin:
			acc.Youth++
		}
	}

	if area, ok := model.ParseFloat(ds.Value(row, model.FieldArea)); ok {
		acc.TotalAreaHa += area
		commodity := finding.NormalizeCommodity(ds.Text(row, model.FieldCommodity))
		acc.AreaByCommodity[commodity] += area
	}
}

// ageYears computes whole completed years between birthday and the
// reference date as days / 365.25. Unparseable birthdays report ok=false
// and land in no bracket.
func (a *Aggregator) ageYears(birthday interface{}) (int, bool) {
	bd, ok := model.ParseTime(birthday)
	if !ok {
		return 0, false
	}
	days := a.config.ReferenceDate.Sub(bd).Hours() / 24
	if days < 0 {
		return 0, false
	}
	return int(days / 365.25), true
}
