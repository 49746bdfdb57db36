package kv

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkoehler/jKV/cmd/util"
	"github.com/tkoehler/jKV/lib/ds"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if err := store.Set(key, ds.Bytes(value)); err != nil {
				return err
			}
			if err := store.Flush(); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, ok, err := store.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, resp=%s\n", key, ok, resp)
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks whether a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if ok, err := store.Has(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v\n", key, ok)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			removed, err := store.Delete(key)
			if err != nil {
				return err
			}
			if err := store.Flush(); err != nil {
				return err
			}
			fmt.Printf("key=%s, removed=%v\n", key, removed)
			return nil
		},
	}
	flushCmd = &cobra.Command{
		Use:   "flush",
		Short: "Persists the datastore to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Flush(); err != nil {
				return err
			}
			fmt.Println("flushed successfully")
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints metadata about the datastore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := store.GetInfo()
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Evaluates a declarative query over the datastore",
		Long: util.WrapString("Evaluates a query over the stored entries: prefix match, value filters, " +
			"ordering, pagination and keys-only projection, in that order."),
		Args: cobra.NoArgs,
		RunE: runQuery,
	}
)

func init() {
	queryCmd.Flags().String("prefix", "", util.WrapString("Retain only keys starting with this prefix"))
	queryCmd.Flags().StringArray("filter", nil, util.WrapString("Value filter as op:value with op one of eq, ne, lt, le, gt, ge; repeatable, all must pass"))
	queryCmd.Flags().StringArray("order", nil, util.WrapString("Sort criterion, one of key-asc, key-desc, value-asc, value-desc; repeatable, later ones break ties"))
	queryCmd.Flags().Uint64("skip", 0, util.WrapString("Drop this many entries from the ordered result"))
	queryCmd.Flags().Uint64("limit", 0, util.WrapString("Return at most this many entries (0 = unlimited)"))
	queryCmd.Flags().Bool("keys-only", false, util.WrapString("Return keys paired with empty placeholder values"))
}

func runQuery(cmd *cobra.Command, _ []string) error {
	q, err := parseQueryFlags(cmd)
	if err != nil {
		return err
	}

	results, err := store.Query(q)
	if err != nil {
		return err
	}

	for _, e := range results {
		if q.KeysOnly {
			fmt.Println(e.Key)
		} else {
			fmt.Printf("%s\t%q\n", e.Key, string(e.Value))
		}
	}
	fmt.Printf("(%d entries)\n", len(results))
	return nil
}

// parseQueryFlags builds a ds.Query from the query command's flags
func parseQueryFlags(cmd *cobra.Command) (ds.Query[ds.Bytes], error) {
	q := ds.Query[ds.Bytes]{}

	q.Prefix, _ = cmd.Flags().GetString("prefix")
	q.Skip, _ = cmd.Flags().GetUint64("skip")
	q.KeysOnly, _ = cmd.Flags().GetBool("keys-only")

	limit, _ := cmd.Flags().GetUint64("limit")
	if limit == 0 {
		// on the command line, "no limit flag" means unbounded
		limit = ds.NoLimit
	}
	q.Limit = limit

	filters, _ := cmd.Flags().GetStringArray("filter")
	for _, raw := range filters {
		f, err := parseFilter(raw)
		if err != nil {
			return q, err
		}
		q.Filters = append(q.Filters, f)
	}

	orders, _ := cmd.Flags().GetStringArray("order")
	for _, raw := range orders {
		o, err := parseOrder(raw)
		if err != nil {
			return q, err
		}
		q.Orders = append(q.Orders, o)
	}

	return q, nil
}

func parseFilter(raw string) (ds.Filter[ds.Bytes], error) {
	op, value, found := strings.Cut(raw, ":")
	if !found {
		return ds.Filter[ds.Bytes]{}, fmt.Errorf("invalid filter %q (expected op:value)", raw)
	}

	var filterOp ds.FilterOp
	switch op {
	case "eq":
		filterOp = ds.FilterEqual
	case "ne":
		filterOp = ds.FilterNotEqual
	case "lt":
		filterOp = ds.FilterLessThan
	case "le":
		filterOp = ds.FilterLessOrEqual
	case "gt":
		filterOp = ds.FilterGreaterThan
	case "ge":
		filterOp = ds.FilterGreaterOrEqual
	default:
		return ds.Filter[ds.Bytes]{}, fmt.Errorf("invalid filter operator %q (expected one of: eq, ne, lt, le, gt, ge)", op)
	}

	return ds.Filter[ds.Bytes]{Op: filterOp, Value: ds.Bytes(value)}, nil
}

func parseOrder(raw string) (ds.Order, error) {
	switch raw {
	case "key-asc":
		return ds.OrderByKeyAsc, nil
	case "key-desc":
		return ds.OrderByKeyDesc, nil
	case "value-asc":
		return ds.OrderByValueAsc, nil
	case "value-desc":
		return ds.OrderByValueDesc, nil
	default:
		return 0, fmt.Errorf("invalid order %q (expected one of: key-asc, key-desc, value-asc, value-desc)", raw)
	}
}
