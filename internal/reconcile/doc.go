// Package reconcile implements the CCP vs AT whitelist reconciliation core.
//
// The core is a pure, in-memory transform over three already-loaded tables:
// the CCP security whitelist, the CCP market rules and the AT whitelist.
// Loading files, exporting results and caching runs are done by callers.
//
// # Pipeline
//
// A run proceeds through these stages, each available on its own:
//
//	NormalizeColumns   column names to snake_case
//	DetectSymbolColumn per-table identifier column
//	Combine            security x rules, left join on exchange (many-to-one)
//	Align              project CCP columns onto AT field names via a FieldMapping
//	WithCompositeKey   SYMBOL|EXCHANGE keys on both sides
//	Analyzer.Analyze   requirement 1, 2 and 3 plus the mismatch pivot
//	Summarize          run statistics
//
// Engine.Run wires the stages together:
//
//	engine := reconcile.NewEngine(reconcile.WithLogger(logger))
//	result, err := engine.Run(ctx, reconcile.Input{
//	    Security: securityTable,
//	    Rules:    rulesTable,
//	    AT:       atTable,
//	})
//
// # Errors
//
// SchemaError and MultiplicityError abort a run. Duplicate composite keys and
// keys with null parts never fail a run; they are logged and counted in the
// statistics.
//
// # Concurrency
//
// Engines, mappings and input tables are read-only during a run, so any
// number of runs may execute in parallel.
package reconcile
