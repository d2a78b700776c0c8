package repro

import (
	"errors"
	"os"
	"strings"

	"github.com/databill86/dvc/internal/dataitem"
	"github.com/databill86/dvc/internal/dvcerrors"
	"github.com/databill86/dvc/internal/state"
)

// Node is the recursive unit of reproduction: one artifact, its loaded
// state record and the collaborators needed to bring it up to date.
// Nodes are ephemeral; one is built per artifact per reproduction
// attempt and discarded when Reproduce returns.
type Node struct {
	env  Env
	item dataitem.DataItem
	rec  *state.Record
}

// NewNode loads and validates the state record for one artifact.
func NewNode(env Env, item dataitem.DataItem) (*Node, error) {
	rec, err := env.States.Load(item.StateAbs())
	if err != nil {
		return nil, dvcerrors.Wrap(dvcerrors.MalformedState, err,
			"cannot load state record for data file %q", item.Data)
	}

	if len(rec.Cmd) == 0 {
		return nil, dvcerrors.New(dvcerrors.MalformedState,
			"state file %q for data file %q does not define a command", item.State, item.Data)
	}
	if !rec.HasUsableCmd() {
		return nil, dvcerrors.New(dvcerrors.MalformedState,
			"command in state file %q is too short to re-execute", item.State)
	}

	return &Node{env: env, item: item, rec: rec}, nil
}

// Record exposes the loaded state record.
func (n *Node) Record() *state.Record {
	return n.rec
}

// Reproduce brings the artifact up to date, reproducing its
// dependencies first, and reports whether the artifact was actually
// regenerated. The code accumulator collects every code dependency the
// recursion touches; trail carries the artifacts on the current
// recursion path for cycle detection.
func (n *Node) Reproduce(force bool, code *CodeDepSet, trail []string) (bool, error) {
	code.Add(n.rec.CodeDeps...)

	if !n.rec.Reproducible {
		n.env.logger().Debug("data file is not reproducible", map[string]interface{}{
			"target": n.item.Data,
		})
		return false, nil
	}

	if err := checkTrail(trail, n.item.Data); err != nil {
		return false, err
	}
	trail = append(trail, n.item.Data)

	deps, err := n.dependencies()
	if err != nil {
		return false, err
	}

	// Every dependency is fully reproduced, in declared order, before
	// this artifact's own staleness is decided.
	inputsChanged := false
	for _, depItem := range deps {
		child, err := NewNode(n.env, depItem)
		if err != nil {
			return false, err
		}
		changed, err := child.Reproduce(force, code, trail)
		if err != nil {
			return false, err
		}
		if changed {
			inputsChanged = true
		}
	}

	sourceChanged, err := n.env.Git.FilesChanged(n.item.Data, n.rec.CodeDeps)
	if err != nil {
		return false, dvcerrors.Wrap(dvcerrors.InternalError, err,
			"checking source changes for data file %q", n.item.Data)
	}

	if !force && !sourceChanged && !inputsChanged {
		n.env.logger().Debug("data file is up to date", map[string]interface{}{
			"target": n.item.Data,
		})
		return false, nil
	}

	if err := n.regenerate(); err != nil {
		return false, err
	}
	return true, nil
}

// Stale evaluates the same staleness rule as Reproduce without
// touching the repository: an artifact is stale when its sources
// changed or any dependency is stale.
func (n *Node) Stale(trail []string) (bool, error) {
	if !n.rec.Reproducible {
		return false, nil
	}

	if err := checkTrail(trail, n.item.Data); err != nil {
		return false, err
	}
	trail = append(trail, n.item.Data)

	deps, err := n.dependencies()
	if err != nil {
		return false, err
	}
	for _, depItem := range deps {
		child, err := NewNode(n.env, depItem)
		if err != nil {
			return false, err
		}
		stale, err := child.Stale(trail)
		if err != nil {
			return false, err
		}
		if stale {
			return true, nil
		}
	}

	return n.env.Git.FilesChanged(n.item.Data, n.rec.CodeDeps)
}

// dependencies resolves the declared input files into data items,
// keeping their declared order.
func (n *Node) dependencies() ([]dataitem.DataItem, error) {
	items := make([]dataitem.DataItem, 0, len(n.rec.Deps))
	for _, dep := range n.rec.Deps {
		item, err := n.env.Resolver.DataItem(dep)
		if err != nil {
			if errors.Is(err, dataitem.ErrNotInDataDir) {
				return nil, dvcerrors.Wrap(dvcerrors.DependencyNotManaged, err,
					"dependency %q of data file %q is not a data item", dep, n.item.Data)
			}
			return nil, dvcerrors.Wrap(dvcerrors.DependencyResolutionFailed, err,
				"unable to resolve dependency %q of data file %q", dep, n.item.Data)
		}
		items = append(items, item)
	}
	return items, nil
}

// regenerate deletes the stale artifact and re-runs its producing
// command.
func (n *Node) regenerate() error {
	logger := n.env.logger()

	if n.env.Cache != nil {
		if _, err := os.Stat(n.item.DataAbs()); err == nil {
			if _, err := n.env.Cache.Snapshot(n.item.DataAbs()); err != nil {
				logger.Warn("could not snapshot artifact before regeneration", map[string]interface{}{
					"target": n.item.Data,
					"error":  err.Error(),
				})
			}
		}
	}

	logger.Debug("removing stale data file", map[string]interface{}{
		"target": n.item.Data,
	})
	if err := os.Remove(n.item.DataAbs()); err != nil && !os.IsNotExist(err) {
		return dvcerrors.Wrap(dvcerrors.InternalError, err,
			"removing stale data file %q", n.item.Data)
	}

	logger.Debug("re-running command", map[string]interface{}{
		"target": n.item.Data,
		"cmd":    strings.Join(n.rec.Cmd, " "),
	})
	if err := n.env.Runner.Execute(n.rec.Cmd); err != nil {
		return dvcerrors.Wrap(dvcerrors.ExecutionFailed, err,
			"reproduction command for data file %q failed", n.item.Data)
	}

	return nil
}

func checkTrail(trail []string, current string) error {
	for _, prev := range trail {
		if prev == current {
			cycle := append(append([]string(nil), trail...), current)
			return dvcerrors.New(dvcerrors.DependencyCycle,
				"dependency cycle detected: %s", strings.Join(cycle, " -> "))
		}
	}
	return nil
}
