// Package staged is a staged rendering engine. A report type declares a
// lifecycle of named stages; format handlers implement whichever stage hooks
// they need; the [Engine] runs one render call through that lifecycle and
// returns the output.
//
// # Report Types
//
// A [ReportType] is defined once at startup:
//
//	rt := staged.NewReportType("invoice").
//		Stages("header", "body", "footer").
//		Require("customer")
//	rt.Register("text", NewText)
//	eng := staged.New(staged.WithReports(rt))
//
// [ReportType.PrepareStage] and [ReportType.FinalizeStage] may each be set
// once; a second call fails with [ErrStageAlreadyDefined]. [ReportType.Stages]
// accumulates.
//
// # Handlers
//
// A handler embeds [Formatter] and implements any of the optional
// capabilities. A missing capability is a no-op:
//
//   - [Preparer] → prepare hook for the prepare stage
//   - [Builder] → build hooks, run in declared stage order
//   - [StageFinalizer] → finalize hook for the finalize stage
//   - [Finalizer] → generic finalize, always run if present
//   - [Layouter] → wraps the build stages
//   - [TemplateApplier] → opts in to template defaulting
//   - [BinaryOutput] → saved output is written in binary mode
//
// [ReportType.RegisterInline] registers a one-off format from a base handler
// and a map of build-stage closures.
//
// # Render Lifecycle
//
// [Engine.Render] binds a fresh handler with a copy of the report's default
// options, applies caller overrides, checks required options, fills absent
// options from the active [Template], then runs prepare → build (wrapped by
// layout) → finalize → generic finalize, and saves to the "file" option if
// set. Nothing is written before validation passes.
//
// # Options
//
// [Options] keys are case, dash and leading-colon insensitive. A nil value is
// absent. Templates and [Options.MergeDefaults] only fill absent fields, so
// an explicit option always wins.
//
// # Producers
//
// Any type can render itself after [Bind]:
//
//	staged.Bind[Invoice](eng, "invoice", map[string]any{"currency": "EUR"})
//	out, err := eng.As(inv, "text")
//	err = eng.SaveAs(inv, "invoice.csv")
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrStageAlreadyDefined]: second prepare or finalize stage
//   - [ErrUnknownFormat]: no handler registered for the format
//   - [ErrRequiredOptionNotSet]: a required option is absent
//   - [ErrTemplateNotDefined]: unknown template or parent
//   - [ErrReportNotSet]: producer type never bound
//   - [ErrUnknownReport]: report name not defined on the engine
//   - [ErrReportDefined]: report name defined twice
//
// Errors returned by hooks, payload transforms and copiers are returned
// unchanged.
package staged
