// Package api mounts the operator-visible HTTP surface described in spec
// §6: a read-only view of the uninstall plan, external to the coordinator
// core itself.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesosphere/uninstall-scheduler/internal/uninstall"
)

// stepView is the JSON shape of one step in the /plans response.
type stepView struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	AssetID string `json:"assetId"`
	Status  string `json:"status"`
}

// phaseView is the JSON shape of one phase.
type phaseView struct {
	Name   string     `json:"name"`
	Status string     `json:"status"`
	Steps  []stepView `json:"steps"`
}

// planView is the full /plans response body.
type planView struct {
	Status string      `json:"status"`
	Phases []phaseView `json:"phases"`
}

// RegisterPlansRoute mounts GET /plans on e, backed by manager's current
// plan (spec §4.K).
func RegisterPlansRoute(e *echo.Echo, manager *uninstall.PlanManager) {
	e.GET("/plans", func(c echo.Context) error {
		return c.JSON(http.StatusOK, renderPlan(manager))
	})
}

func renderPlan(manager *uninstall.PlanManager) planView {
	plan := manager.Plan()
	view := planView{Status: manager.PlanStatus().String()}
	for _, phase := range plan.Phases {
		pv := phaseView{Name: phase.Name, Status: phase.Status().String()}
		for _, step := range phase.Steps {
			pv.Steps = append(pv.Steps, stepView{
				Name:    step.Name,
				Kind:    step.Kind.String(),
				AssetID: step.AssetID,
				Status:  step.Status.String(),
			})
		}
		view.Phases = append(view.Phases, pv)
	}
	return view
}
