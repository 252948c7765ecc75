package scene

import (
	"fmt"

	"github.com/taigrr/duorast/pkg/render"
)

// Action names one interactive toggle.
type Action int

const (
	CycleShading Action = iota
	CycleCull
	ToggleRotation
	ToggleNormalMap
	ToggleDepth
	ToggleBoundingBox
	ToggleUniformClear
	ToggleClipping
	ToggleFastCulling
	ToggleMultiThreading
	ToggleBounds
	ToggleAxes
	ToggleHUD
	ToggleFireFX
)

var actionNames = map[Action]string{
	CycleShading:         "shading",
	CycleCull:            "cull",
	ToggleRotation:       "rotation",
	ToggleNormalMap:      "normal map",
	ToggleDepth:          "depth view",
	ToggleBoundingBox:    "bbox view",
	ToggleUniformClear:   "uniform clear",
	ToggleClipping:       "clipping",
	ToggleFastCulling:    "fast culling",
	ToggleMultiThreading: "multithreading",
	ToggleBounds:         "bounds",
	ToggleAxes:           "axes",
	ToggleHUD:            "hud",
	ToggleFireFX:         "fire fx",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Toggle applies an action and returns a one-line status such as
// "clipping: off".
func (s *Scene) Toggle(a Action) string {
	var state string
	switch a {
	case CycleShading:
		s.Info.ShadingMode = s.Info.ShadingMode.Next()
		state = s.Info.ShadingMode.String()
	case CycleCull:
		if len(s.Meshes) == 0 {
			state = "no mesh"
			break
		}
		m := s.Meshes[0]
		m.CullMode = m.CullMode.Next()
		state = m.CullMode.String()
	case ToggleRotation:
		state = flip(&s.Rotate)
	case ToggleNormalMap:
		state = flip(&s.Info.UseNormalMap)
	case ToggleDepth:
		state = flip(&s.Info.VisualizeDepth)
	case ToggleBoundingBox:
		state = flip(&s.Info.VisualizeBoundingBox)
	case ToggleUniformClear:
		state = flip(&s.UseUniformClear)
	case ToggleClipping:
		state = flip(&s.Info.UseClipping)
	case ToggleFastCulling:
		state = flip(&s.Info.UseFastCulling)
	case ToggleMultiThreading:
		state = flip(&s.Info.UseMultiThreading)
	case ToggleBounds:
		state = flip(&s.ShowBounds)
	case ToggleAxes:
		state = flip(&s.ShowAxes)
	case ToggleHUD:
		state = flip(&s.ShowHUD)
	case ToggleFireFX:
		state = s.toggleEffects()
	default:
		return fmt.Sprintf("unknown action %d", int(a))
	}

	status := a.String() + ": " + state
	s.logger().Info("toggle", "action", a.String(), "state", state)
	return status
}

// toggleEffects shows or hides every transparent mesh together, keyed on the
// first one found.
func (s *Scene) toggleEffects() string {
	var fx []*render.Mesh
	for _, m := range s.Meshes {
		if m.Effect == render.EffectTransparent {
			fx = append(fx, m)
		}
	}
	if len(fx) == 0 {
		return "no effect mesh"
	}
	on := !fx[0].Enabled
	for _, m := range fx {
		m.Enabled = on
	}
	if on {
		return "on"
	}
	return "off"
}

func flip(b *bool) string {
	*b = !*b
	if *b {
		return "on"
	}
	return "off"
}
