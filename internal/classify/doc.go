// package classify implements the pure scoring engine that labels candidate
// videos as accepted, review, or rejected.
//
// Classification is a deterministic function of the video metadata, the
// artist's overrides, the channel trust level, and an immutable RuleSet.
// No I/O happens here; the same inputs always produce the same result, and
// malformed input (empty title, missing duration) degrades the score but
// never fails.
package classify
