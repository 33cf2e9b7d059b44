package loot

import (
	"github.com/loot-core/libloot/internal/condition"
)

// conditionEnvironment adapts a GameHandle into internal/condition.Environment
// and internal/metadata.ConditionEvaluator, so those packages never need to
// import the root package directly (avoids an import cycle; spec.md §4.2/§4.3
// boundary between condition evaluation and everything that consumes it).
type conditionEnvironment struct {
	handle *GameHandle
}

func (e *conditionEnvironment) DataPaths() []string {
	return e.handle.allDataPaths()
}

func (e *conditionEnvironment) IsActive(name string) bool {
	return e.handle.loadOrderHandler.IsActive(NewPluginFilename(name))
}

func (e *conditionEnvironment) IsMaster(name string) (bool, bool) {
	p, ok := e.handle.GetPlugin(name)
	if !ok {
		return false, false
	}
	return p.IsMaster(), true
}

func (e *conditionEnvironment) PluginVersion(name string) (string, bool) {
	p, ok := e.handle.GetPlugin(name)
	if !ok {
		return "", false
	}
	return p.Version()
}

func (e *conditionEnvironment) PluginCRC(name string) (uint32, bool, error) {
	if p, ok := e.handle.GetPlugin(name); ok {
		if crc, ok := p.CRC(); ok {
			return crc, true, nil
		}
	}
	path, ok := e.handle.resolveDataPath(name)
	if !ok {
		return 0, false, nil
	}
	crc, err := condition.ComputeFileCRC32(path)
	if err != nil {
		return 0, false, err
	}
	return crc, true, nil
}

// EvaluateCondition parses and evaluates conditionText against the handle's
// current installation state, using the process-lifetime condition cache
// (spec.md §4.2). It satisfies internal/metadata.ConditionEvaluator.
func (h *GameHandle) EvaluateCondition(conditionText string) (bool, error) {
	if conditionText == "" {
		return true, nil
	}
	node, err := condition.Parse(conditionText)
	if err != nil {
		se, ok := err.(*condition.SyntaxError)
		if !ok {
			return false, &ConditionSyntaxError{Condition: conditionText, Message: err.Error()}
		}
		return false, &ConditionSyntaxError{Condition: conditionText, Position: se.Position, Message: se.Message}
	}

	env := &conditionEnvironment{handle: h}
	result, err := h.conditionCache.Evaluate(conditionText, node, env, h.allDataPaths())
	if err != nil {
		return false, &ConditionEvaluationError{Condition: conditionText, Cause: err}
	}
	return result, nil
}
