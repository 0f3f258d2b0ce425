/*
Package auditor implements the recordseal sealing service.

An Auditor owns a data directory and a snapshot store. It imports raw
datasets into normalized record sets, builds their hash trees, publishes
each build as the next version of the dataset's apex snapshot chain, and
later checks a dataset against its latest snapshot or produces and
verifies authentication paths for single records.
*/
package auditor
