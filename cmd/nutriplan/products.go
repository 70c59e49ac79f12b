package nutriplan

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/render"
	"github.com/saadjs/nutriplan/internal/service"
)

var (
	productGrade        string
	productLimit        int
	productJSON         bool
	productRefresh      bool
	productCacheLimit   int
	productPurgeAll     bool
	productPurgeExpired bool
	productPurgeBarcode string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Search packaged foods on OpenFoodFacts",
}

var productsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products by free text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, err := service.ParseGrade(productGrade)
		if err != nil {
			return err
		}
		limit := productLimit
		if limit <= 0 {
			limit = cfg.ProductPageSize
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		products, _, err := productClient().Search(ctx, strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		products = service.FilterProductsByGrade(products, grade)
		if productJSON {
			return writeJSON(cmd, products)
		}
		printer(cmd).Products(products)
		return nil
	},
}

var productsBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Look up a product by barcode (cached)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *session) error {
			res, err := lookupProduct(cmd, s, args[0], productRefresh)
			if err != nil {
				return err
			}
			if productJSON {
				return writeJSON(cmd, res)
			}
			printer(cmd).Product(res.Product, res.FromCache)
			return nil
		})
	},
}

var productsCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the barcode lookup cache",
}

var productsCacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached barcode lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCacheDB(cmd, func(s *session) error {
			items, err := service.ListProductCache(s.sqldb, productCacheLimit)
			if err != nil {
				return err
			}
			if productJSON {
				return writeJSON(cmd, items)
			}
			printer(cmd).ProductCache(items)
			return nil
		})
	},
}

var productsCachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached barcode lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCacheDB(cmd, func(s *session) error {
			n, err := service.PurgeProductCache(s.sqldb, service.ProductCachePurge{
				All:     productPurgeAll,
				Expired: productPurgeExpired,
				Barcode: productPurgeBarcode,
			}, time.Now())
			if err != nil {
				return err
			}
			printer(cmd).Notify(render.LevelSuccess, "purged %d cached products", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsSearchCmd, productsBarcodeCmd, productsCacheCmd)
	productsCacheCmd.AddCommand(productsCacheListCmd, productsCachePurgeCmd)

	productsCmd.PersistentFlags().BoolVar(&productJSON, "json", false, "Output as JSON")
	productsSearchCmd.Flags().StringVar(&productGrade, "grade", "", "Only products with this Nutri-Score grade (a-e)")
	productsSearchCmd.Flags().IntVar(&productLimit, "limit", 0, "Page size (default from config)")
	productsBarcodeCmd.Flags().BoolVar(&productRefresh, "refresh", false, "Bypass the cache")
	productsCacheListCmd.Flags().IntVar(&productCacheLimit, "limit", 100, "Max rows")
	productsCachePurgeCmd.Flags().BoolVar(&productPurgeAll, "all", false, "Purge every cached product")
	productsCachePurgeCmd.Flags().BoolVar(&productPurgeExpired, "expired", false, "Purge expired rows only")
	productsCachePurgeCmd.Flags().StringVar(&productPurgeBarcode, "barcode", "", "Purge one barcode")
}

func lookupProduct(cmd *cobra.Command, s *session, barcode string, refresh bool) (service.ProductLookupResult, error) {
	ctx, cancel := requestContext(cmd)
	defer cancel()
	return service.LookupProduct(ctx, s.sqldb, productClient(), barcode, service.ProductLookupOptions{
		TTL:     cfg.BarcodeCacheTTL,
		Refresh: refresh,
		Logger:  logger,
	})
}

func withCacheDB(cmd *cobra.Command, run func(*session) error) error {
	return withStore(func(s *session) error {
		if s.sqldb == nil {
			printer(cmd).Notify(render.LevelInfo, "the product cache needs sqlite storage")
			return nil
		}
		return run(s)
	})
}
