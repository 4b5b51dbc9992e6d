// Package pipeline runs the COVID report end to end.
//
// Run executes six steps in order: load, clean, query, derive, render and
// export. Each step gets its own OpenTelemetry span, a stage label on the
// context (picked up by the logger as "stage"), and a duration sample in
// the pipeline metrics. The first failing step stops the run and its error
// is returned wrapped with the step ID, e.g. "load: ...".
//
//	result, err := pipeline.Run(ctx, cfg.Report,
//	    pipeline.WithLogger(logger),
//	    pipeline.WithMetrics(metrics),
//	)
//
// Console output matches the classic script: a preview of the raw dataset,
// "Data loaded and cleaned." and a final line listing the saved charts.
// Everything else goes to the structured log.
package pipeline
