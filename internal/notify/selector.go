package notify

import (
	"context"
	"sort"
	"time"

	"github.com/nhle/cpapcare/internal/model"
	"github.com/nhle/cpapcare/internal/schedule"
	"github.com/nhle/cpapcare/internal/store"
)

// DueItem joins a due action with its component and notification config
// for ranking and display.
type DueItem struct {
	Action    model.MaintenanceAction
	Component model.Component
	Config    *model.NotificationConfig

	// HoursOverdue is max(0, now - next_due) in whole hours.
	HoursOverdue int

	// Overdue is true when the due date fell before today.
	Overdue bool
}

// Selector builds the ranked list of actions needing attention.
type Selector struct {
	store store.Store
}

// NewSelector creates a Selector over the given store.
func NewSelector(s store.Store) *Selector {
	return &Selector{store: s}
}

// DueItems returns every action whose due date has arrived, owned by an
// active component and not silenced by a disabled config, ranked most
// urgent first: overdue before due-today, larger hours-overdue first,
// earlier due date breaking ties.
func (sel *Selector) DueItems(ctx context.Context, now time.Time) ([]DueItem, error) {
	actions, err := sel.store.GetActions(ctx, store.ActionFilter{DueBefore: &now})
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, nil
	}

	components, err := sel.store.GetComponents(ctx, true)
	if err != nil {
		return nil, err
	}
	componentByID := make(map[string]model.Component, len(components))
	for _, c := range components {
		componentByID[c.ID] = c
	}

	configs, err := sel.store.GetNotificationConfigs(ctx)
	if err != nil {
		return nil, err
	}
	configByAction := make(map[string]model.NotificationConfig, len(configs))
	for _, c := range configs {
		configByAction[c.ActionID] = c
	}

	var items []DueItem
	for _, action := range actions {
		component, ok := componentByID[action.ComponentID]
		if !ok || !component.Active {
			continue
		}

		var cfg *model.NotificationConfig
		if c, ok := configByAction[action.ID]; ok {
			if !c.Enabled {
				continue
			}
			cfg = &c
		}

		items = append(items, DueItem{
			Action:       action,
			Component:    component,
			Config:       cfg,
			HoursOverdue: schedule.HoursOverdue(*action.NextDue, now),
			Overdue:      schedule.IsOverdue(*action.NextDue, now),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Overdue != items[j].Overdue {
			return items[i].Overdue
		}
		if items[i].HoursOverdue != items[j].HoursOverdue {
			return items[i].HoursOverdue > items[j].HoursOverdue
		}
		return items[i].Action.NextDue.Before(*items[j].Action.NextDue)
	})

	return items, nil
}
