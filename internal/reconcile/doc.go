// Package reconcile merges local tab exports with the remote catalog and
// applies local and remote catalog mutations.
//
// Remote batches write tab documents first and the manifest last. The first
// failed write stops the batch and nothing is rolled back, so a rerun
// recomputes versions and orders from the remote state it finds.
package reconcile
