// Package headrag provides an in-process contextual chunk-header retrieval engine.
//
// A document is split into overlapping windows; every window gets a short
// generated title (its header); both the window text and the header are
// embedded, and a query is ranked against the mean of the two cosine
// similarities. The top chunks ground a generated answer, which can be scored
// against a reference answer on a 0 / 0.5 / 1 rubric.
//
//	client, _ := headrag.New(
//	    headrag.WithEmbedder(myEmbedder),
//	    headrag.WithCompleter(myCompleter),
//	    headrag.WithChunking(1000, 200),
//	)
//	_ = client.IndexFile(ctx, "report.pdf")
//	ans, _ := client.Ask(ctx, "What changed in Q3?", &headrag.SearchOptions{TopK: 3})
//	rec, _ := client.Evaluate(ctx, "What changed in Q3?", ans.Text, "Revenue doubled.")
//
// The index lives in memory and is rebuilt by every Index call.
package headrag
