// Package fieldmap loads CCP to AT field mappings from user supplied files
// and repairs near-miss CCP field names against the columns actually present
// in a combined CCP table.
package fieldmap
