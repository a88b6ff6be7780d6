// Package uploads enumerates a channel's uploads as UploadRecords.
//
// Two sources exist. APISource pages through the uploads playlist via the
// YouTube Data API and can look up durations. FeedSource reads the public
// channel Atom feed, needs no credential, and only sees recent uploads. Its
// durations stay unknown unless a VideoLookup probe is configured. Both
// enumerate lazily through iter.Seq2 so the pipeline
// can stop early and a fresh sequence restarts from the first page.
package uploads
