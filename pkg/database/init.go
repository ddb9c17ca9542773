package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/pkg/config"
	"github.com/fisker/nexforms-backend/pkg/logger"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDatabase 初始化数据库（支持 MySQL 和 PostgreSQL）
func InitDatabase(cfg *config.DatabaseConfig) error {
	var err error
	var dialector gorm.Dialector

	// 根据配置选择数据库驱动
	switch cfg.Driver {
	case "postgres", "postgresql":
		// PostgreSQL: 先创建数据库（如果不存在）
		if err := createPostgresDatabase(cfg); err != nil {
			return fmt.Errorf("failed to create PostgreSQL database: %w", err)
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)
		dialector = postgres.Open(dsn)
	case "mysql", "":
		// MySQL: 先创建数据库（如果不存在）
		if err := createMySQLDatabase(cfg); err != nil {
			return fmt.Errorf("failed to create MySQL database: %w", err)
		}
		// 默认使用 MySQL
		dsn := cfg.DSN()
		dialector = mysql.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", cfg.Driver)
	}

	logger.Infof("Connecting to %s database...", cfg.Driver)

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})

	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 100 // 默认值
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 10 // 默认值
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 3600 // 默认 1 小时
	}
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	logger.Infof("Database connection pool configured: MaxOpenConns=%d, MaxIdleConns=%d, ConnMaxLifetime=%ds",
		maxOpenConns, maxIdleConns, connMaxLifetime)

	// 立即 Ping 数据库以确保连接可用
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Database connection verified successfully")
	return nil
}

// createMySQLDatabase 创建 MySQL 数据库（如果不存在）
// 使用 database/sql 而不是 GORM，避免影响主连接
func createMySQLDatabase(cfg *config.DatabaseConfig) error {
	// 连接到 MySQL 服务器（不指定数据库）
	dsnWithoutDB := fmt.Sprintf("%s:%s@tcp(%s:%d)/?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port)

	db, err := sql.Open("mysql", dsnWithoutDB)
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL server: %w", err)
	}
	defer db.Close() // 确保关闭临时连接

	// 设置连接超时
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Second)

	// 测试连接
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping MySQL server: %w", err)
	}

	// 创建数据库（如果不存在）
	createDBSQL := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.DBName)
	if _, err := db.Exec(createDBSQL); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	logger.Infof("Database '%s' created or already exists", cfg.DBName)
	return nil
}

// createPostgresDatabase 创建 PostgreSQL 数据库（如果不存在）
// 使用 database/sql 而不是 GORM，避免影响主连接
func createPostgresDatabase(cfg *config.DatabaseConfig) error {
	// PostgreSQL 需要连接到默认的 postgres 数据库来创建新数据库
	dsnPostgres := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password)

	db, err := sql.Open("postgres", dsnPostgres)
	if err != nil {
		// 如果连接 postgres 数据库失败，尝试连接 template1
		dsnTemplate1 := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=template1 sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password)
		db, err = sql.Open("postgres", dsnTemplate1)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL server: %w", err)
		}
	}
	defer db.Close() // 确保关闭临时连接

	// 设置连接超时
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Second)

	// 测试连接
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL server: %w", err)
	}

	// 检查数据库是否已存在
	var count int64
	checkSQL := "SELECT COUNT(*) FROM pg_database WHERE datname = $1"
	if err := db.QueryRow(checkSQL, cfg.DBName).Scan(&count); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	// 如果数据库不存在，创建它
	if count == 0 {
		createDBSQL := fmt.Sprintf("CREATE DATABASE %s", cfg.DBName)
		if _, err := db.Exec(createDBSQL); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		logger.Infof("Database '%s' created successfully", cfg.DBName)
	} else {
		logger.Infof("Database '%s' already exists", cfg.DBName)
	}

	return nil
}

// CheckTableExists 检查表是否存在
func CheckTableExists(tableName string) (bool, error) {
	if DB == nil {
		return false, fmt.Errorf("database connection is not initialized")
	}

	var count int64
	var err error

	// 根据数据库类型使用不同的查询
	if DB.Dialector.Name() == "postgres" {
		err = DB.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?", tableName).Scan(&count).Error
	} else {
		// MySQL
		err = DB.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?", tableName).Scan(&count).Error
	}

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// AutoMigrateAll 自动迁移所有表（仅在表不存在时创建）
func AutoMigrateAll() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Checking database tables...")

	// 定义所有需要创建的表（使用 GORM 的 TableName 方法获取实际表名）
	tables := []interface{}{
		&model.FormType{},
		&model.DataType{},
		&model.FieldType{},
		&model.Form{},
		&model.FormSection{},
		&model.FormField{},
		&model.FormDraft{},
		&model.MainProcess{},
		&model.FocusArea{},
		&model.Criteria{},
		&model.WorkflowChecklist{},
	}

	// 检查每个表是否存在，只迁移不存在的表
	var tablesToMigrate []interface{}
	for _, table := range tables {
		// 使用 GORM 的 Statement 获取表名
		stmt := &gorm.Statement{DB: DB}
		if err := stmt.Parse(table); err != nil {
			logger.Warnf("Failed to parse table model: %v", err)
			continue
		}
		tableName := stmt.Schema.Table
		exists, err := CheckTableExists(tableName)
		if err != nil {
			logger.Warnf("Failed to check table %s: %v", tableName, err)
			// 如果检查失败，仍然尝试迁移（可能是权限问题，但迁移可能会成功）
			tablesToMigrate = append(tablesToMigrate, table)
			continue
		}
		if !exists {
			logger.Infof("Table %s does not exist, will be created", tableName)
			tablesToMigrate = append(tablesToMigrate, table)
		} else {
			logger.Debugf("Table %s already exists, skipping", tableName)
		}
	}

	// 如果没有需要迁移的表，直接返回
	if len(tablesToMigrate) == 0 {
		logger.Info("All database tables already exist, no migration needed")
		return nil
	}

	// 执行自动迁移，只创建不存在的表
	logger.Infof("Starting auto-migration for %d table(s)...", len(tablesToMigrate))
	err := DB.AutoMigrate(tablesToMigrate...)

	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Infof("Successfully migrated %d table(s)", len(tablesToMigrate))

	// 创建默认数据（数据类型、字段类型）
	if err := createDefaultData(); err != nil {
		logger.Warnf("Failed to create default data: %v", err)
		// 不返回错误，因为表已经创建成功，默认数据可以后续手动创建
	}

	return nil
}

// createDefaultData 创建默认数据（基础数据类型、默认字段类型）
func createDefaultData() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Creating default data...")

	if err := createDefaultDataTypes(); err != nil {
		logger.Warnf("Failed to create default data types: %v", err)
	}

	if err := createDefaultFieldTypes(); err != nil {
		logger.Warnf("Failed to create default field types: %v", err)
	}

	logger.Info("Default data creation completed")
	return nil
}

// createDefaultDataTypes 创建基础数据类型
func createDefaultDataTypes() error {
	dataTypes := []model.DataType{
		{Name: "text", ValidationRules: []byte(`{"pattern": null, "maxLength": null, "minLength": null}`)},
		{Name: "number", ValidationRules: []byte(`{"min": null, "max": null}`)},
		{Name: "date", ValidationRules: []byte(`{"startDateBeforeOrEqualEndDate": true}`)},
		{Name: "select", ValidationRules: []byte(`{"isMultiple": false, "maxSelection": null, "minSelection": 0}`)},
		{Name: "file", ValidationRules: []byte(`{"fileType": null, "isMultiple": false, "maxFileSize": null}`)},
		{Name: "boolean", ValidationRules: []byte(`{}`)},
	}

	for _, dt := range dataTypes {
		var existing model.DataType
		result := DB.Where("name = ?", dt.Name).First(&existing)
		if result.Error != nil {
			dt.ID = model.NewID()
			if err := DB.Create(&dt).Error; err != nil {
				return fmt.Errorf("failed to create data type %s: %w", dt.Name, err)
			}
			logger.Infof("Created default data type: %s", dt.Name)
		}
	}

	return nil
}

// createDefaultFieldTypes 创建默认字段类型（每种数据类型一个同名默认类型）
func createDefaultFieldTypes() error {
	fieldTypes := []struct {
		Name     string
		DataType string
	}{
		{"Text", "text"},
		{"Number", "number"},
		{"Date", "date"},
		{"Dropdown", "select"},
		{"File Upload", "file"},
		{"Checkbox", "boolean"},
	}

	for _, ft := range fieldTypes {
		var dataType model.DataType
		if err := DB.Where("name = ?", ft.DataType).First(&dataType).Error; err != nil {
			logger.Warnf("Data type %s not found, skipping field type %s", ft.DataType, ft.Name)
			continue
		}

		var existing model.FieldType
		result := DB.Where("name = ?", ft.Name).First(&existing)
		if result.Error != nil {
			fieldType := model.FieldType{
				Name:       ft.Name,
				DataTypeID: dataType.ID,
				Default:    true,
			}
			fieldType.ID = model.NewID()
			if err := DB.Create(&fieldType).Error; err != nil {
				return fmt.Errorf("failed to create field type %s: %w", ft.Name, err)
			}
			logger.Infof("Created default field type: %s (%s)", ft.Name, ft.DataType)
		}
	}

	return nil
}
