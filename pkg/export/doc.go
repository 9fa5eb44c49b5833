// Package export mirrors the documents of a project into a Sink.
//
// An Exporter fetches every document through a DocumentSource (normally a
// *session.Session), joins the lines and hands the text to the Sink. Fetches
// share one session and run with bounded concurrency.
//
// Two sinks are provided:
//
//   - DirSink writes files under a local directory.
//   - S3Sink writes objects under a bucket prefix.
//
// Both compare an xxhash fingerprint of the new content with what is
// already stored and skip the write when nothing changed, so repeated
// exports of a large project only touch edited documents.
//
// # Example
//
//	sink, err := export.NewDirSink("out")
//	if err != nil {
//	    return err
//	}
//	ex := export.New(sess, sink, export.WithConcurrency(4))
//	res, err := ex.Run(ctx, info.Project.Docs())
package export
