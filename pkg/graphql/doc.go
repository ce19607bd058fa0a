// Package graphql is a small GraphQL client built from composable links.
//
// A Provider assembles the default chain
//
//	withToken -> authMiddleware -> (extra links) -> httpLink
//
// around a caller-supplied auth accessor, builds a caching Client on top of
// it and attaches that client to a context.Context so request handlers can
// reach it with ClientFromContext or the package-level Query and Mutate
// helpers.
//
// When the auth accessor reports an authenticated user with a token getter,
// every operation carries
//
//	authorization: Bearer <token>
//	auth-provider: <type>
//
// Unauthenticated operations carry neither header.
package graphql
