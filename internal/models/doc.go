// Package models defines the core domain models for Udhaar.
//
// # Model Overview
//
//   - User: an account, created on first OTP verification and named on signup
//   - Currency: an ISO-style currency with a point-in-time exchange rate
//   - Group: a set of members sharing expenses; direct groups are
//     system-created for a fixed member set
//   - Expense: money the creator spent on behalf of a group
//   - SplitTransaction: a single directed debt row, the core ledger record
//
// # Design Principles
//
// 1. **Append-only ledger**: split transactions are never edited or deleted;
// every settlement, netting pass and conversion appends new rows.
// 2. **Recomputed balances**: net balances are always derived from raw rows,
// there is no cached balance column anywhere.
// 3. **Avoid circular references**: models hold ID strings, not pointers.
package models
