package factory

import (
	"embed"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// ErrUnknownScenario is returned for a scenario id with no embedded fixture.
var ErrUnknownScenario = eris.New("unknown scenario")

// ScenarioInfo describes an embedded demo fixture.
type ScenarioInfo struct {
	ID          string
	Name        string
	Description string
	ContractID  int64
}

// Scenarios lists the embedded demo fixtures ordered by id.
func Scenarios() ([]ScenarioInfo, error) {
	entries, err := fs.ReadDir(scenarioFS, "scenarios")
	if err != nil {
		return nil, eris.Wrap(err, "factory: read scenarios")
	}

	var out []ScenarioInfo
	for _, e := range entries {
		fx, err := readScenario(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, ScenarioInfo{ID: fx.ID, Name: fx.Name, Description: fx.Description, ContractID: fx.ContractID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Scenario returns the embedded fixture with the given id.
func Scenario(id string) (*Fixture, error) {
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return nil, eris.Wrapf(ErrUnknownScenario, "factory: scenario %q", id)
	}
	fx, err := readScenario(id + ".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(ErrUnknownScenario, "factory: scenario %q", id)
	}
	return fx, err
}

func readScenario(name string) (*Fixture, error) {
	data, err := scenarioFS.ReadFile(path.Join("scenarios", name))
	if err != nil {
		return nil, err
	}
	fx, err := ParseFixture(data)
	if err != nil {
		return nil, eris.Wrapf(err, "factory: scenario %s", name)
	}
	return fx, nil
}
