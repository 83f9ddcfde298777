// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity, token and identifier utilities.

# Identity

Users are authenticated by an external identity provider that issues HS256
JWTs. The subject claim is the stable user ID:

	userID, err := auth.ParseIdentity(bearer, secret)

SignIdentity issues compatible tokens for development and tests:

	token, err := auth.SignIdentity("user-1", secret, time.Hour)

# Slugs

Published surveys are reachable through a slug derived from the title:

	slug := auth.Slugify("¿Qué opinas?")  // "que-opinas"

Collisions are resolved by appending SlugSuffix (4 hex characters).

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving fraud detection:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
