package source

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
)

// Default reference locations.
const (
	DefaultBurdenPath      = "burden-disease-from-each-mental-illness.csv"
	DefaultCountryCodesURL = "https://raw.githubusercontent.com/lukes/ISO-3166-Countries-with-Regional-Codes/master/all/all.csv"
	DefaultTopologyURL     = "https://cdn.jsdelivr.net/npm/vega-datasets@2/data/world-110m.json"
)

// Sources names the three inputs of the dataset.
type Sources struct {
	Burden         string
	CountryCodes   string
	Topology       string
	TopologyObject string
	Policy         types.DropPolicy
}

// LoadDataset fetches and parses all inputs concurrently. The first failure cancels
// the remaining fetches and is returned.
func LoadDataset(ctx context.Context, f *Fetcher, src Sources) (*model.Dataset, error) {
	var (
		burden *Burden
		codes  []model.CountryCode
		topo   *Topology
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rc, err := f.Open(gctx, src.Burden)
		if err != nil {
			return fmt.Errorf("burden: %w", err)
		}
		defer rc.Close()
		burden, err = LoadBurden(gctx, rc, src.Policy)
		if err != nil {
			return fmt.Errorf("burden: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rc, err := f.Open(gctx, src.CountryCodes)
		if err != nil {
			return fmt.Errorf("country codes: %w", err)
		}
		defer rc.Close()
		codes, err = LoadCountryCodes(gctx, rc)
		if err != nil {
			return fmt.Errorf("country codes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rc, err := f.Open(gctx, src.Topology)
		if err != nil {
			return fmt.Errorf("topology: %w", err)
		}
		defer rc.Close()
		topo, err = LoadTopology(gctx, rc, src.TopologyObject)
		if err != nil {
			return fmt.Errorf("topology: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Assemble(burden, codes, topo, src.Policy), nil
}

// Assemble builds the dataset from already parsed inputs.
func Assemble(b *Burden, codes []model.CountryCode, topo *Topology, policy types.DropPolicy) *model.Dataset {
	ds := model.NewDataset(b.Records, topo.Shapes, codes)
	ds.Topology = topo.Raw
	ds.TopologyObject = topo.Object
	ds.Stats = b.Stats
	if policy != "" {
		ds.Policy = policy
	}
	return ds
}
