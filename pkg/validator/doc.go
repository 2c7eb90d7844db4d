// Package validator builds field validation from small rules.
//
//	err := validator.Apply(
//		validator.Required("email", req.Email),
//		validator.ValidEmail("email", req.Email),
//		validator.When(req.Phone != "", validator.ValidPhone("phone", req.Phone)),
//	)
//
// Apply evaluates every rule and returns ValidationErrors listing all
// failures, or nil.
package validator
