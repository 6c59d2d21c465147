// package discover walks the artist roster, resolves each artist to a
// channel, classifies every upload, and persists the accepted, review and
// failed documents per artist.
//
// Discovery is resumable: per-artist state is checkpointed after every
// consumed page, so a quota stop mid-roster loses at most one page and the
// next run continues from the same artist, same page token. Re-running a
// completed roster with no new uploads performs no reclassification.
package discover
