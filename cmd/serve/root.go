package serve

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdUtil "github.com/essildoor/tengu-travels/cmd/util"
	"github.com/essildoor/tengu-travels/lib/api"
	"github.com/essildoor/tengu-travels/lib/cache"
	"github.com/essildoor/tengu-travels/lib/loader"
	"github.com/essildoor/tengu-travels/lib/logging"
	"github.com/essildoor/tengu-travels/lib/store"
)

var (
	serveCmdConfig = &ServiceConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the travels server",
		Long:    `Start the travels server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is TENGU_<flag> (e.g. TENGU_CACHE_SIZE=5000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "data-path"
	ServeCmd.PersistentFlags().String(key, "/tmp/data/data.zip", cmdUtil.WrapString("Path to the zip archive with the initial users, locations and visits corpus. A missing archive is not an error: the service starts empty"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. 0.0.0.0:8080)"))

	key = "cache-size"
	ServeCmd.PersistentFlags().Int(key, cache.DefaultCapacity, cmdUtil.WrapString("Capacity of the per-entity-kind response caches. Eviction is least-recently-accessed"))

	key = "load-workers"
	ServeCmd.PersistentFlags().Int(key, 4, cmdUtil.WrapString("Number of goroutines parsing archive entries during the initial import"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.DataPath = viper.GetString("data-path")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.CacheSize = viper.GetInt("cache-size")
	serveCmdConfig.LoadWorkers = viper.GetInt("load-workers")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run wires the stores, caches and loader together and serves HTTP
func run(_ *cobra.Command, _ []string) error {
	logging.Init(serveCmdConfig.LogLevel)
	log := logger.GetLogger("cmd")
	log.Infof("starting with configuration:%s", serveCmdConfig.String())

	// the stores reference each other: visits read users and locations to
	// denormalize, users and locations push field changes into visits
	users := store.NewUserStore()
	locations := store.NewLocationStore()
	visits := store.NewVisitStore(users, locations)
	users.AttachVisits(visits)
	locations.AttachVisits(visits)

	userCache := cache.New("users", serveCmdConfig.CacheSize)
	locationCache := cache.New("locations", serveCmdConfig.CacheSize)

	if _, err := loader.New(users, locations, visits, serveCmdConfig.LoadWorkers).LoadArchive(serveCmdConfig.DataPath); err != nil {
		return err
	}

	return api.NewServer(users, locations, visits, userCache, locationCache).Run(serveCmdConfig.Endpoint)
}

// initConfig reads in ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tengu")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
