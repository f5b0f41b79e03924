package cmds

func Var[T any](name string) *T {
	var value T

	// set
	Define(name, Func(func(v T) {
		value = v
	}))

	// set zero
	var zero T
	Define(name+".", Func(func() {
		value = zero
	}))

	return &value
}

func Switch(name string) *bool {
	var value bool

	// set true
	Define(name, Func(func() {
		value = true
	}))

	// set false
	Define("!"+name, Func(func() {
		value = false
	}))

	return &value
}

func Collect[T any](name string) *[]T {
	var value []T
	// append
	Define(name, Func(func(v T) {
		value = append(value, v)
	}))
	return &value
}

// VarDefault is Var with a non-zero starting value; the "name." reset
// command restores the default rather than the zero value.
func VarDefault[T any](name string, def T) *T {
	value := def

	Define(name, Func(func(v T) {
		value = v
	}))

	Define(name+".", Func(func() {
		value = def
	}))

	return &value
}
