package emit

import (
	"strings"

	"github.com/NunaInc/nudl-go/internal/nameobj"
)

// renameSuffix is appended to a name that collides with a Python keyword,
// builtin, standard module, or that already looks "dunder"-shaped,
// mirroring the original python_names.cc's kPythonRenameEnding.
const renameSuffix = "__nudl"

// pythonKeywords is copied verbatim from python_names.cc's IsPythonKeyword.
var pythonKeywords = map[string]struct{}{
	"await": {}, "else": {}, "import": {}, "pass": {}, "None": {}, "break": {}, "except": {},
	"in": {}, "raise": {}, "class": {}, "finally": {}, "is": {}, "return": {}, "and": {},
	"continue": {}, "for": {}, "lambda": {}, "try": {}, "as": {}, "def": {}, "from": {},
	"nonlocal": {}, "while": {}, "assert": {}, "del": {}, "global": {}, "not": {}, "with": {},
	"async": {}, "elif": {}, "if": {}, "or": {}, "yield": {}, "False": {}, "True": {},
}

// pythonBuiltins is copied verbatim from python_names.cc's IsPythonBuiltin:
// builtin functions/constants/exceptions, plus the standard-library module
// names a generated top-level name could otherwise shadow.
var pythonBuiltins = buildPythonBuiltins()

func buildPythonBuiltins() map[string]struct{} {
	names := []string{
		// Builtins.
		"__name__", "__doc__", "__package__", "__loader__", "__spec__",
		"__build_class__", "__import__", "abs", "all", "any", "ascii", "bin",
		"breakpoint", "callable", "chr", "compile", "delattr", "dir", "divmod",
		"eval", "exec", "format", "getattr", "globals", "hasattr", "hash", "hex",
		"id", "input", "isinstance", "issubclass", "iter", "len", "locals", "max",
		"min", "next", "oct", "ord", "pow", "print", "repr", "round", "setattr",
		"sorted", "sum", "vars", "None", "Ellipsis", "NotImplemented", "bool",
		"memoryview", "bytearray", "bytes", "classmethod", "complex", "dict",
		"enumerate", "filter", "float", "frozenset", "property", "int", "list",
		"map", "object", "range", "reversed", "set", "slice", "staticmethod",
		"str", "super", "tuple", "type", "zip", "__debug__",
		"BaseException", "Exception", "TypeError", "StopAsyncIteration",
		"StopIteration", "GeneratorExit", "SystemExit", "KeyboardInterrupt",
		"ImportError", "ModuleNotFoundError", "OSError", "EnvironmentError",
		"IOError", "EOFError", "RuntimeError", "RecursionError",
		"NotImplementedError", "NameError", "UnboundLocalError",
		"AttributeError", "SyntaxError", "IndentationError", "TabError",
		"LookupError", "IndexError", "KeyError", "ValueError", "UnicodeError",
		"UnicodeEncodeError", "UnicodeDecodeError", "UnicodeTranslateError",
		"AssertionError", "ArithmeticError", "FloatingPointError",
		"OverflowError", "ZeroDivisionError", "SystemError", "ReferenceError",
		"MemoryError", "BufferError", "Warning", "UserWarning",
		"DeprecationWarning", "PendingDeprecationWarning", "SyntaxWarning",
		"RuntimeWarning", "FutureWarning", "ImportWarning", "UnicodeWarning",
		"BytesWarning", "ResourceWarning", "ConnectionError", "BlockingIOError",
		"BrokenPipeError", "ChildProcessError", "ConnectionAbortedError",
		"ConnectionRefusedError", "ConnectionResetError", "FileExistsError",
		"FileNotFoundError", "IsADirectoryError", "NotADirectoryError",
		"InterruptedError", "PermissionError", "ProcessLookupError",
		"TimeoutError", "open", "quit", "exit", "copyright", "credits",
		"license", "help", "_",
		// Standard-library module names.
		"__future__", "__main__", "_thread", "abc", "aifc", "argparse", "array",
		"ast", "asynchat", "asyncio", "asyncore", "atexit", "audioop", "base64",
		"bdb", "binascii", "bisect", "builtins", "bz2", "calendar", "cgi",
		"cgitb", "chunk", "cmath", "cmd", "code", "codecs", "codeop",
		"collections", "colorsys", "compileall", "concurrent", "contextlib",
		"contextvars", "copy", "copyreg", "cProfile", "csv", "ctypes", "curses",
		"dataclasses", "datetime", "dbm", "decimal", "difflib", "dis",
		"distutils", "doctest", "email", "encodings", "ensurepip", "enum",
		"errno", "faulthandler", "fcntl", "filecmp", "fileinput", "fnmatch",
		"fractions", "ftplib", "functools", "gc", "getopt", "getpass",
		"gettext", "glob", "graphlib", "grp", "gzip", "hashlib", "heapq",
		"hmac", "html", "http", "idlelib", "imaplib", "imghdr", "imp",
		"importlib", "inspect", "io", "ipaddress", "itertools", "json",
		"keyword", "lib2to3", "linecache", "locale", "logging", "lzma",
		"mailbox", "mailcap", "marshal", "math", "mimetypes", "mmap",
		"modulefinder", "msilib", "msvcrt", "multiprocessing", "netrc", "nis",
		"nntplib", "numbers", "operator", "optparse", "os", "ossaudiodev",
		"pathlib", "pdb", "pickle", "pickletools", "pipes", "pkgutil",
		"platform", "plistlib", "poplib", "posix", "pprint", "profile",
		"pstats", "pty", "pwd", "py_compile", "pyclbr", "pydoc", "queue",
		"quopri", "random", "re", "readline", "reprlib", "resource",
		"rlcompleter", "runpy", "sched", "secrets", "select", "selectors",
		"shelve", "shlex", "shutil", "signal", "site", "smtpd", "smtplib",
		"sndhdr", "socket", "socketserver", "spwd", "sqlite3", "ssl", "stat",
		"statistics", "string", "stringprep", "struct", "subprocess", "sunau",
		"symtable", "sys", "sysconfig", "syslog", "tabnanny", "tarfile",
		"telnetlib", "tempfile", "termios", "test", "textwrap", "threading",
		"time", "timeit", "tkinter", "token", "tokenize", "tomllib", "trace",
		"traceback", "tracemalloc", "tty", "turtle", "turtledemo", "types",
		"typing", "unicodedata", "unittest", "urllib", "uu", "uuid", "venv",
		"warnings", "wave", "weakref", "webbrowser", "winreg", "winsound",
		"wsgiref", "xdrlib", "xml", "xmlrpc", "zipapp", "zipfile", "zipimport",
		"zlib", "zoneinfo",
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func isPythonKeyword(name string) bool {
	_, ok := pythonKeywords[name]
	return ok
}

func isPythonBuiltin(name string) bool {
	_, ok := pythonBuiltins[name]
	return ok
}

// isPythonSpecialName reports whether name is dunder-shaped
// (`__init__`-like), per python_names.cc's IsPythonSpecialName.
func isPythonSpecialName(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// pythonSafeNameUnit renames one dotted-path segment if it collides with a
// keyword, a dunder-shaped name, an already-renamed nudl name, or a Python
// builtin/module name -- except that a Field is never treated as a builtin
// collision (a struct may legitimately have a field named e.g. `len`),
// mirroring PythonSafeNameUnit's OBJ_FIELD carve-out.
func pythonSafeNameUnit(name string, obj nameobj.NamedObject) string {
	isBuiltin := isPythonBuiltin(name)
	if obj != nil && obj.Kind() == nameobj.KindField {
		isBuiltin = false
	}
	if !isPythonSpecialName(name) && !isPythonKeyword(name) &&
		!strings.HasSuffix(name, renameSuffix) && !isBuiltin {
		return name
	}
	return name + renameSuffix
}

// skipConversionFunction is the slice of funcs.Function pythonSafeName
// needs to honor spec §6's "Names marked skip_conversion are emitted
// verbatim": just enough to check the flag without an import cycle with
// internal/funcs.
type skipConversionFunction interface {
	IsSkipConversion() bool
}

// pythonSafeName renames name (a possibly dot-joined path) for emission as
// a Python identifier, per spec §6 "Identifier renaming" and
// python_names.cc's PythonSafeName: each path segment is renamed
// independently (walking the object's own parent-store chain so an outer
// segment's builtin-collision check sees its own named object, not the
// leaf's), except that a function flagged skip_conversion passes through
// unchanged entirely.
func pythonSafeName(name string, obj nameobj.NamedObject) string {
	if fn, ok := obj.(skipConversionFunction); ok && fn.IsSkipConversion() {
		return name
	}
	parts := strings.Split(name, ".")
	renamed := make([]string, len(parts))
	current := obj
	for i := len(parts) - 1; i >= 0; i-- {
		renamed[i] = pythonSafeNameUnit(parts[i], current)
		for current != nil {
			parent, ok := current.ParentStore()
			if !ok {
				current = nil
				break
			}
			current = parent
			if current.Kind() != nameobj.KindFunctionGroup {
				break
			}
		}
	}
	return strings.Join(renamed, ".")
}
