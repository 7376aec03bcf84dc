// Package suite maps scenario IDs to flows and runs selections of them as
// one suite with a shared browser session.
package suite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storefront-qa/storecheck/pkg/config"
	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/flows"
	"github.com/storefront-qa/storecheck/pkg/logger"
	"github.com/storefront-qa/storecheck/pkg/pages"
	"github.com/storefront-qa/storecheck/pkg/storedb"
	"github.com/storefront-qa/storecheck/pkg/testdata"
)

// Entry binds a scenario ID to the flow it exercises.
type Entry struct {
	ScenarioID string
	Flow       func() flows.Flow
}

// Registry returns every known scenario in execution order. Destructive
// scenarios come last so earlier cart checks see a predictable store.
func Registry() []Entry {
	return []Entry{
		{testdata.RegistrationValid, flows.Registration},
		{testdata.RegistrationExistingEmail, flows.Registration},
		{testdata.RegistrationNoAgreement, flows.Registration},
		{testdata.RegistrationBlank, flows.RegistrationBlankFields},
		{testdata.LoginValid, flows.Login},
		{testdata.LoginWrongPassword, flows.Login},
		{testdata.CartSingleProduct, flows.AddToCart},
		{testdata.CartMultiProduct, flows.AddToCart},
		{testdata.CheckoutHappyPath, flows.Checkout},
	}
}

// Suite runs scenarios against one browser session.
type Suite struct {
	cfg      *config.Config
	session  *pages.Session
	runner   *flows.Runner
	provider *testdata.Provider
	store    *storedb.Store // nil when no database is configured
}

// New wires a suite. drv is the browser session to run against; store may
// be nil.
func New(cfg *config.Config, drv core.Driver, store *storedb.Store) *Suite {
	session := pages.NewSession(drv, cfg.BaseURL, cfg.WaitOptions())
	runner := flows.NewRunner(session)
	runner.ScreenshotDir = cfg.ScreenshotDir
	return &Suite{
		cfg:      cfg,
		session:  session,
		runner:   runner,
		provider: testdata.NewProvider(),
		store:    store,
	}
}

// Run executes the scenarios with the given IDs, or every registered
// scenario when ids is empty. Unknown IDs produce an errored flow result
// rather than aborting the rest of the suite.
func (s *Suite) Run(ctx context.Context, ids []string) core.SuiteResult {
	result := core.SuiteResult{
		Name:      "storefront-regression",
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	logger.Info("suite started: run %s", result.RunID)

	entries := s.selectEntries(ids)
	for i, entry := range entries {
		if ctx.Err() != nil {
			result.Flows = append(result.Flows, skippedFlow(entry.ScenarioID, "run cancelled"))
			continue
		}

		// Each scenario starts from an anonymous session.
		if i > 0 {
			if err := s.session.Driver().Reset(ctx); err != nil {
				logger.Warn("session reset before %s: %v", entry.ScenarioID, err)
			}
		}

		if entry.Flow == nil {
			err := core.ErrInvalidConfig.WithMessage("unknown scenario %q", entry.ScenarioID)
			logger.Error("%v", err)
			result.Flows = append(result.Flows, erroredFlow(entry.ScenarioID, err))
			continue
		}

		data, err := s.provider.Get(entry.ScenarioID)
		if err != nil {
			logger.Error("scenario %s: %v", entry.ScenarioID, err)
			result.Flows = append(result.Flows, erroredFlow(entry.ScenarioID, err))
			continue
		}

		fr := s.runner.Run(ctx, entry.Flow(), data)
		result.Flows = append(result.Flows, fr)

		s.cleanupAfter(ctx, data)
	}

	result.Duration = time.Since(result.StartTime)
	result.ComputeSummary()
	logger.Info("suite finished: %d/%d flows passed (%d tracked known-issue)",
		result.PassedFlows, result.TotalFlows, result.KnownIssueFlows)
	return result
}

func (s *Suite) selectEntries(ids []string) []Entry {
	all := Registry()
	if len(ids) == 0 {
		return all
	}
	byID := make(map[string]Entry, len(all))
	for _, e := range all {
		byID[e.ScenarioID] = e
	}
	var picked []Entry
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			picked = append(picked, e)
			continue
		}
		picked = append(picked, Entry{ScenarioID: id})
	}
	return picked
}

// cleanupAfter undoes server-side state a scenario leaves behind. Failed
// login attempts accumulate per email and eventually trip the store's
// throttle, poisoning later valid-login runs.
func (s *Suite) cleanupAfter(ctx context.Context, data testdata.Scenario) {
	if s.store == nil || data.ID != testdata.LoginWrongPassword {
		return
	}
	if err := s.store.ResetLoginAttempts(ctx, data.Customer.Email); err != nil {
		logger.Warn("login attempt cleanup for %s: %v", data.Customer.Email, err)
	}
}

func erroredFlow(scenarioID string, err error) core.FlowResult {
	fr := core.FlowResult{
		Name:      scenarioID,
		Scenario:  scenarioID,
		Status:    core.StatusErrored,
		StartTime: time.Now(),
		Error:     err.Error(),
	}
	fr.ComputeSummary()
	return fr
}

func skippedFlow(scenarioID, reason string) core.FlowResult {
	fr := core.FlowResult{
		Name:      scenarioID,
		Scenario:  scenarioID,
		Status:    core.StatusSkipped,
		StartTime: time.Now(),
		Error:     reason,
	}
	fr.ComputeSummary()
	return fr
}
