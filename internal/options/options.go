package options

import (
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bcup/bcup/internal/errors"
)

// Options holds extended options given as key=value on the command line, for
// example "telegram.timeout=30s".
type Options map[string]string

// Help describes a single extended option.
type Help struct {
	Namespace string
	Name      string
	Text      string
}

var registered []Help

// Register records the options of cfg, a struct with `option` and `help`
// tags, under namespace ns so that List can show them.
func Register(ns string, cfg interface{}) {
	for _, h := range listOptions(cfg) {
		h.Namespace = ns
		registered = append(registered, h)
	}

	slices.SortFunc(registered, func(a, b Help) int {
		if a.Namespace != b.Namespace {
			return strings.Compare(a.Namespace, b.Namespace)
		}
		return strings.Compare(a.Name, b.Name)
	})
	registered = slices.Compact(registered)
}

// List returns all registered options, sorted by namespace and name.
func List() []Help {
	return slices.Clone(registered)
}

func listOptions(cfg interface{}) (list []Help) {
	t := reflect.Indirect(reflect.ValueOf(cfg)).Type()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("option")
		if name == "" {
			continue
		}
		list = append(list, Help{Name: name, Text: f.Tag.Get("help")})
	}

	return list
}

// Parse converts a list of key=value strings into Options. Keys are
// lower-cased and may contain a namespace prefix separated by a dot. Giving
// the same key twice with different values is an error.
func Parse(in []string) (Options, error) {
	opts := make(Options, len(in))

	for _, s := range in {
		key, value, _ := strings.Cut(s, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if key == "" {
			return nil, errors.Fatalf("empty key is not a valid option")
		}

		if old, ok := opts[key]; ok && old != value {
			return nil, errors.Fatalf("key %q present more than once", key)
		}

		opts[key] = value
	}

	return opts, nil
}

// Extract returns the options within namespace ns, with the namespace
// stripped from the keys.
func (o Options) Extract(ns string) Options {
	prefix := strings.TrimSuffix(ns, ".") + "."
	res := make(Options)

	for k, v := range o {
		if rest, ok := strings.CutPrefix(k, prefix); ok {
			res[rest] = v
		}
	}

	return res
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	secretType   = reflect.TypeOf(SecretString{})
)

// Apply stores the options in the struct dst points to, using the `option`
// struct tags. ns is only used for error messages.
func (o Options) Apply(ns string, dst interface{}) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()

	fields := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("option")
		if tag == "" {
			continue
		}
		if _, ok := fields[tag]; ok {
			panic("option tag " + tag + " is not unique in " + t.Name())
		}
		fields[tag] = i
	}

	for key, value := range o {
		i, ok := fields[key]
		if !ok {
			if ns != "" {
				key = ns + "." + key
			}
			return errors.Fatalf("option %v is not known", key)
		}

		if err := setField(v.Field(i), value); err != nil {
			if ns != "" {
				key = ns + "." + key
			}
			return errors.Fatalf("invalid value for option %v: %v", key, err)
		}
	}

	return nil
}

func setField(f reflect.Value, value string) error {
	switch f.Type() {
	case durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		f.SetInt(int64(d))
		return nil

	case secretType:
		f.Set(reflect.ValueOf(NewSecretString(value)))
		return nil
	}

	switch f.Kind() {
	case reflect.String:
		f.SetString(value)

	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)

	case reflect.Uint, reflect.Uint64:
		n, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return err
		}
		f.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		f.SetBool(b)

	default:
		panic("type " + f.Type().String() + " not handled")
	}

	return nil
}
