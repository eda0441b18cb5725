// Package sourcetest provides a small dataset for tests, built through the real loaders.
package sourcetest

import (
	"context"
	"strings"

	"github.com/okian/burden/internal/adapters/source"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
)

// BurdenHeader is the header row of the burden CSV.
var BurdenHeader = func() string {
	cols := []string{source.ColumnEntity, source.ColumnCode, source.ColumnYear}
	for _, m := range types.Metrics() {
		cols = append(cols, `"`+m.Column()+`"`)
	}
	return strings.Join(cols, ",")
}()

// BurdenCSV covers France, Peru, Chad and Japan for 2018 and 2019 plus an aggregate
// region without a code. Chad 2019 lacks Schizophrenia. Peru 2019 appears twice.
var BurdenCSV = BurdenHeader + `
France,FRA,2018,600,150,120,80,500
France,FRA,2019,610,151,121,81,510
Peru,PER,2018,700,160,130,60,450
Peru,PER,2019,720,161,131,61,460
Peru,PER,2019,1,1,1,1,1
Chad,TCD,2018,1150,140,90,30,400
Chad,TCD,2019,1200,,91,31,410
Japan,JPN,2018,400,170,100,90,300
Japan,JPN,2019,410,171,101,91,310
Africa,,2019,900,140,95,35,420
`

// CodesCSV bridges numeric ids to alpha-3 codes. Monaco has no shape; Western Sahara
// has a shape but no burden rows.
const CodesCSV = `name,alpha-2,alpha-3,country-code,iso_3166-2,region
France,FR,FRA,250,ISO 3166-2:FR,Europe
Peru,PE,PER,604,ISO 3166-2:PE,Americas
Chad,TD,TCD,148,ISO 3166-2:TD,Africa
Japan,JP,JPN,392,ISO 3166-2:JP,Asia
Monaco,MC,MCO,492,ISO 3166-2:MC,Europe
Western Sahara,EH,ESH,732,ISO 3166-2:EH,Africa
`

// TopologyJSON holds six countries; one id is missing from the code table and one
// geometry has no id.
const TopologyJSON = `{
  "type": "Topology",
  "objects": {
    "countries": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "id": 250, "arcs": [[0]]},
        {"type": "Polygon", "id": 604, "arcs": [[1]]},
        {"type": "Polygon", "id": 148, "arcs": [[2]]},
        {"type": "Polygon", "id": 392, "arcs": [[3]]},
        {"type": "Polygon", "id": 732, "arcs": [[4]]},
        {"type": "Polygon", "id": "-99", "arcs": [[5]]},
        {"type": "Polygon", "arcs": [[6]]}
      ]
    }
  },
  "arcs": [[[0,0],[1,1]],[[1,1],[2,2]],[[2,2],[3,3]],[[3,3],[4,4]],[[4,4],[5,5]],[[5,5],[6,6]],[[6,6],[7,7]]]
}`

// Dataset loads the fixture under policy. It panics on a loader error.
func Dataset(policy types.DropPolicy) *model.Dataset {
	ctx := context.Background()
	b, err := source.LoadBurden(ctx, strings.NewReader(BurdenCSV), policy)
	if err != nil {
		panic(err)
	}
	codes, err := source.LoadCountryCodes(ctx, strings.NewReader(CodesCSV))
	if err != nil {
		panic(err)
	}
	topo, err := source.LoadTopology(ctx, strings.NewReader(TopologyJSON), source.DefaultTopologyObject)
	if err != nil {
		panic(err)
	}
	return source.Assemble(b, codes, topo, policy)
}
