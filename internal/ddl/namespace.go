package ddl

import (
	"fmt"
	"regexp"
)

// cloneProcedure copies the globals and routines databases of one namespace
// into another. It is (re)created before every clone.
const cloneProcedure = `CREATE OR REPLACE PROCEDURE %ZIRISQL.CLONE_DATABASE(sourceNS %String, targetNS %String)
LANGUAGE OBJECTSCRIPT
{
	new $namespace
	set $namespace = "%SYS"

	$$$ThrowOnError(##class(Config.Namespaces).Get(sourceNS, .sourceNSparams))
	$$$ThrowOnError(##class(Config.Namespaces).Get(targetNS, .targetNSparams))

	for kind="Globals", "Routines" {
		$$$ThrowOnError(##class(Config.Databases).Get(sourceNSparams(kind), .sourceDBparams))
		$$$ThrowOnError(##class(Config.Databases).Get(targetNSparams(kind), .targetDBparams))

		set from = sourceDBparams("Directory")
		set to = targetDBparams("Directory")

		quit:$Data(done(to))
		set done(to) = ""

		$$$ThrowOnError(##class(SYS.Database).Copy(from, to, , , 4))
	}
}`

// namespaceName matches the namespace names IRIS accepts unquoted.
var namespaceName = regexp.MustCompile(`^[A-Za-z%][A-Za-z0-9_]*$`)

func checkNamespace(name string) error {
	if !namespaceName.MatchString(name) {
		return fmt.Errorf("invalid namespace name %q", name)
	}
	return nil
}

// CreateDatabase renders CREATE DATABASE, which creates a namespace and its
// databases.
func (e *Editor) CreateDatabase(name string) (string, error) {
	if err := checkNamespace(name); err != nil {
		return "", err
	}
	return "CREATE DATABASE " + name, nil
}

// CloneDatabase returns the statements that create target and copy the
// contents of source into it.
func (e *Editor) CloneDatabase(source, target string) ([]string, error) {
	if err := checkNamespace(source); err != nil {
		return nil, err
	}
	create, err := e.CreateDatabase(target)
	if err != nil {
		return nil, err
	}
	return []string{
		cloneProcedure,
		create,
		fmt.Sprintf("CALL %%ZIRISQL.CLONE_DATABASE('%s', '%s')", source, target),
	}, nil
}

// DropDatabase renders DROP DATABASE, which removes a namespace together with
// its database files.
func (e *Editor) DropDatabase(name string) (string, error) {
	if err := checkNamespace(name); err != nil {
		return "", err
	}
	return "DROP DATABASE " + name, nil
}
