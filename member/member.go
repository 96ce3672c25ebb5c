package member

import (
	"context"

	"github.com/hatcher/tasks/models"
	"github.com/hatcher/tasks/pkg/ormx"
	"github.com/hatcher/tasks/pkg/resp"
	"github.com/hatcher/tasks/pkg/util"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GuildMember 服务器成员档案，与任务清单同库存储
type GuildMember struct {
	ormx.BaseModel
	DiscordID      int64   `json:"discordId" gorm:"column:discord_id;type:bigint;not null;uniqueIndex"`
	Username       string  `json:"username" gorm:"column:username;type:varchar(255);not null"`
	TwitchUsername *string `json:"twitchUsername" gorm:"column:twitch_username;type:varchar(255)"`
	SocialRoleID   *int64  `json:"socialRoleId" gorm:"column:social_role_id;type:bigint"`
}

func (m *GuildMember) TableName() string {
	return "guild_members"
}

// MemberService 成员档案的注册与维护
type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// AutoMigrate 初始化表结构
func (s *MemberService) AutoMigrate() error {
	return s.db.AutoMigrate(&GuildMember{})
}

func (s *MemberService) session(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{NewDB: true})
}

// GetByDiscordID 按 discord id 查询成员，未找到返回 nil
func (s *MemberService) GetByDiscordID(ctx context.Context, discordID int64) (*GuildMember, error) {
	lst, err := models.GetByCondition[*GuildMember](s.session(ctx), "discord_id = ?", discordID)
	if err != nil {
		return nil, errors.WithMessagef(err, "查询成员失败, discordId:%d", discordID)
	}
	if len(lst) == 0 {
		return nil, nil
	}
	return lst[0], nil
}

// RegisterMember 注册成员，重复注册只刷新用户名
func (s *MemberService) RegisterMember(ctx context.Context, discordID int64, username string) error {
	existing, err := s.GetByDiscordID(ctx, discordID)
	if err != nil {
		return err
	}
	tx := s.session(ctx)
	if existing != nil {
		existing.Username = username
		return models.Update(tx, existing)
	}
	err = models.Insert(tx, &GuildMember{
		DiscordID: discordID,
		Username:  username,
	})
	if err != nil {
		// 预检查之后被并发注册抢先，唯一索引兜底，转为刷新用户名
		if models.IsDuplicateErr(err) {
			return s.RegisterMember(ctx, discordID, username)
		}
		return errors.WithMessagef(err, "注册成员失败, discordId:%d", discordID)
	}
	return nil
}

// UpdateTwitchUsername 绑定成员的 twitch 账号
func (s *MemberService) UpdateTwitchUsername(ctx context.Context, discordID int64, twitchUsername string) error {
	existing, err := s.GetByDiscordID(ctx, discordID)
	if err != nil {
		return err
	}
	if existing == nil {
		return resp.NewError(resp.KindNotFound, "成员不存在, discordId:%d", discordID)
	}
	existing.TwitchUsername = util.Of(twitchUsername)
	return models.Update(s.session(ctx), existing)
}
