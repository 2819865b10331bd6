// Package depgraph builds and analyzes dependency graphs of legacy COBOL
// systems.
//
// The package consumes per-source-file Facts produced by an extractor (see
// pkg/cobol) and turns them into an immutable directed graph of typed nodes
// (programs, file resources) and typed edges (calls, uses-file). Once built,
// the graph is a read-only snapshot: cycle enumeration, connectivity analysis,
// and statistics can run concurrently against it without locking.
//
// # Building
//
//	b := depgraph.NewBuilder()
//	for _, f := range facts {
//	    b.Ingest(f)
//	}
//	g, warnings := b.Build()
//
// Bad input never aborts a build. Facts without a program id are skipped and
// recorded as warnings; duplicate program ids are resolved keep-first and
// recorded as warnings; call targets that were never analyzed become phantom
// program nodes.
//
// # Analysis
//
//	cycles := g.FindCycles(ctx, 0)   // every elementary cycle
//	conn := g.Connectivity()         // SCCs + isolated nodes
//	report := g.Statistics(ctx, 0)   // aggregate counts
package depgraph
