// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admission decides whether a submission may be stored.

The checks run in a fixed order: the survey must exist and be published,
then the single-response policy is applied, then required answers are
checked. For scope "user" the key is the signed-in user; for scope
"device" the respondent token and fingerprint are independent keys and a
match on either rejects.

The lookups are only a pre-check. Store.CreateResponse reserves the same
keys inside the insert transaction, and a collision there is reported as
ErrAlreadyAnswered like any other duplicate.

Status answers the same question without writing anything, for clients
that render the form or the "already answered" page up front.
*/
package admission
