package flakes

// builtinNames are names that resolve without a binding: the Python builtins
// the dialect keeps, plus the names the contract runtime injects into every
// module before execution.
var builtinNames = map[string]struct{}{}

func init() {
	names := []string{
		// language builtins available to contract code
		"abs", "all", "any", "ascii", "bin", "bool", "bytearray", "bytes",
		"callable", "chr", "dict", "dir", "divmod", "enumerate", "filter",
		"float", "format", "frozenset", "getattr", "hasattr", "hash", "hex",
		"id", "input", "int", "isinstance", "issubclass", "iter", "len",
		"list", "map", "max", "min", "next", "oct", "open", "ord", "pow",
		"print", "range", "repr", "reversed", "round", "set", "setattr",
		"slice", "sorted", "str", "sum", "tuple", "type", "vars", "zip",
		"eval", "exec", "compile", "globals", "locals", "__import__",
		// common exception types
		"Exception", "BaseException", "ValueError", "TypeError", "KeyError",
		"IndexError", "AttributeError", "AssertionError", "ArithmeticError",
		"ZeroDivisionError", "OverflowError", "RuntimeError", "StopIteration",
		"NotImplementedError",
		// names injected by the contract runtime
		"Variable", "Hash", "ForeignVariable", "ForeignHash", "LogEvent",
		"ctx", "rt", "now", "random", "block_num", "block_hash", "chain_id",
		"export", "construct", "importlib", "datetime", "timedelta",
		"decimal", "hashlib", "crypto", "Any",
	}
	for _, n := range names {
		builtinNames[n] = struct{}{}
	}
}
