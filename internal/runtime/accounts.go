package runtime

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/programerr"
)

var publicKeyType = reflect.TypeOf(solana.PublicKey{})

// BindAccounts fills the tagged fields of dst from named account keys.
// Fields tagged with ",signer" must match signer and default to it when the
// name is absent.
func BindAccounts(dst interface{}, named map[string]solana.PublicKey, signer solana.PublicKey) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind accounts: want pointer to struct, got %T", dst)
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("account")
		if !ok || field.Type != publicKeyType {
			continue
		}
		name, isSigner := parseAccountTag(tag)
		key, present := named[name]
		switch {
		case isSigner && !present:
			key = signer
		case isSigner && !key.Equals(signer):
			return fmt.Errorf("%s: %w", name, programerr.ErrConstraintSigner)
		case !present:
			return fmt.Errorf("%s: %w", name, programerr.ErrMissingAccount)
		}
		v.Field(i).Set(reflect.ValueOf(key))
	}
	return nil
}

// AccountMap flattens a tagged accounts struct into named keys.
func AccountMap(src interface{}) map[string]string {
	v := reflect.Indirect(reflect.ValueOf(src))
	t := v.Type()
	out := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("account")
		if !ok || t.Field(i).Type != publicKeyType {
			continue
		}
		name, _ := parseAccountTag(tag)
		out[name] = v.Field(i).Interface().(solana.PublicKey).String()
	}
	return out
}

func parseAccountTag(tag string) (string, bool) {
	parts := strings.Split(tag, ",")
	signer := false
	for _, opt := range parts[1:] {
		if opt == "signer" {
			signer = true
		}
	}
	return parts[0], signer
}

// ParseAccounts converts base58 account keys.
func ParseAccounts(in map[string]string) (map[string]solana.PublicKey, error) {
	out := make(map[string]solana.PublicKey, len(in))
	for name, raw := range in {
		key, err := solana.PublicKeyFromBase58(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", name, err)
		}
		out[name] = key
	}
	return out, nil
}

func sortedNames(accounts map[string]solana.PublicKey) []string {
	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
