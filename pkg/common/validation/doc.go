/*
Package validation provides shared configuration validation helpers used by
opflow components.

All helpers return a *errors.ConstructionError describing the module, field
and rejected value, so configuration mistakes surface synchronously and with
context:

	if err := validation.ValidatePositive("queue", "maxConcurrent", n); err != nil {
		return err
	}
*/
package validation
