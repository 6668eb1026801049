// Package theme manages the login stylesheet themes: the on-disk registry of
// custom themes, the backup of the original stylesheet, and the
// apply/import/update/delete operations that keep the active stylesheet and
// the persisted current-theme pointer in step.
package theme
