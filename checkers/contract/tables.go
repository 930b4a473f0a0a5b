package contract

// Violation triggers, matching the contracting linter's published codes.
const (
	trigIllegalSyntax    = "S1- Illegal contracting syntax type used"
	trigUnderscore       = "S2- Illicit use of '_' before variable"
	trigNestedImport     = "S3- Illicit use of Nested imports"
	trigImportFrom       = "S4- ImportFrom ast nodes not yet supported"
	trigContractMissing  = "S5- Contract not found in lib"
	trigClass            = "S6- Illicit use of classes"
	trigAsync            = "S7- Illicit use of Async functions"
	trigInvalidDecorator = "S8- Invalid decorator used"
	trigMultipleCtor     = "S9- Multiple constructors found"
	trigMultiDecorator   = "S10- Illicit use of multiple decorators"
	trigORMKwargs        = "S11- Illicit keyword overloading for ORM assignments"
	trigORMTargets       = "S12- Multiple targets to ORM definition detected"
	trigNoExport         = "S13- No valid contracting decorator found"
	trigIllegalBuiltin   = "S14- Illegal use of a builtin"
	trigORMArgReuse      = "S15- Reuse of ORM name definition in function definition arguments"
	trigBadAnnotation    = "S16- Illegal argument annotation used"
	trigNoAnnotation     = "S17- No argument annotation found"
	trigReturnAnnotation = "S18- Illegal use of return annotation"
	trigNestedFunc       = "S19- Illicit use of a nested function definition"
)

const (
	exportDecorator    = "export"
	constructDecorator = "construct"
)

var validDecorators = set(exportDecorator, constructDecorator)

// ormClassNames are the runtime storage constructors whose assignments define
// contract state.
var ormClassNames = set("Variable", "Hash", "ForeignVariable", "ForeignHash", "LogEvent")

// illegalBuiltins are interpreter builtins that would break out of the
// sandboxed execution model.
var illegalBuiltins = set(
	"eval", "exec", "compile", "open", "input", "vars", "dir", "globals",
	"locals", "getattr", "setattr", "delattr", "memoryview", "super",
	"object", "classmethod", "staticmethod", "breakpoint", "exit", "quit",
	"__import__",
)

// reservedRuntimeNames are identifiers the contract runtime injects; contract
// code must not reference them directly. The required decorator markers are
// in this set on purpose: their hits are suppressed by the default whitelist.
var reservedRuntimeNames = set("rt", exportDecorator, constructDecorator)

// allowedAnnotations is the closed set of argument annotations exported
// functions may carry.
var allowedAnnotations = set(
	"int", "float", "str", "bool", "dict", "list", "tuple", "bytes", "Any",
	"datetime.datetime", "datetime.timedelta", "decimal",
)

// illegalNodeTypes are syntax constructs outside the contracting subset,
// reported by tree-sitter node type.
var illegalNodeTypes = set(
	"yield", "generator_expression", "global_statement", "nonlocal_statement",
	"lambda", "await", "try_statement", "with_statement", "delete_statement",
	"named_expression",
)

// stdlibModules are interpreter modules contract code must not import.
// Importing another contract by name stays legal.
var stdlibModules = set(
	"abc", "argparse", "array", "ast", "asyncio", "base64", "binascii",
	"builtins", "bz2", "cmath", "codecs", "collections", "configparser",
	"copy", "csv", "ctypes", "datetime", "decimal", "dis", "doctest",
	"email", "errno", "fcntl", "fractions", "ftplib", "functools", "gc",
	"getpass", "glob", "gzip", "hashlib", "hmac", "html", "http", "imaplib",
	"importlib", "inspect", "io", "itertools", "json", "keyword", "logging",
	"lzma", "marshal", "math", "multiprocessing", "numbers", "os",
	"pathlib", "pdb", "pickle", "platform", "pprint", "profile", "queue",
	"random", "re", "resource", "secrets", "select", "selectors", "shutil",
	"signal", "smtplib", "socket", "sqlite3", "ssl", "string", "struct",
	"subprocess", "symtable", "sys", "tarfile", "tempfile", "threading",
	"time", "timeit", "token", "tokenize", "traceback", "typing",
	"unittest", "urllib", "uuid", "warnings", "weakref", "webbrowser",
	"xml", "zipfile", "zlib",
)

func set(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}
