// package models defines the data model shared across the discovery,
// reconciliation and mutation stages of the pipeline.
//
// Everything here is plain data: fetched video metadata, classification
// outcomes, persisted stage state, and mutation plans. Behavior lives in
// the stage packages.
package models
