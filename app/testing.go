package app

import (
	"context"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"link-checker/internal/common"
)

// TestApplication runs the full graph under fxtest.
type TestApplication struct {
	tb      testing.TB
	testApp *fxtest.App
	opts    Options
	options []fx.Option
}

func NewTestApplication(tb testing.TB, opts ...common.Option) *TestApplication {
	options := &common.ServiceOptions{
		Logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	o := fromServiceOptions(options)
	o.ProgressInterval = 0

	return &TestApplication{
		tb:   tb,
		opts: o,
	}
}

func (ta *TestApplication) WithOption(opt fx.Option) *TestApplication {
	ta.options = append(ta.options, opt)
	return ta
}

func (ta *TestApplication) Start(ctx context.Context) error {
	testOptions := []fx.Option{
		fx.Supply(ta.opts.Logger),
		Modules(ta.opts),
		fx.Invoke(registerHooks),
		fx.StartTimeout(10 * time.Second),
		fx.StopTimeout(10 * time.Second),
	}
	testOptions = append(testOptions, ta.options...)

	ta.testApp = fxtest.New(ta.tb, testOptions...)
	return ta.testApp.Start(ctx)
}

// Wait blocks until the run requests shutdown and returns its exit code.
func (ta *TestApplication) Wait(timeout time.Duration) (int, bool) {
	select {
	case sig := <-ta.testApp.Wait():
		return sig.ExitCode, true
	case <-time.After(timeout):
		return 0, false
	}
}

func (ta *TestApplication) Stop(ctx context.Context) error {
	if ta.testApp != nil {
		return ta.testApp.Stop(ctx)
	}
	return nil
}
