package deform

const (
	operationUserLogin      = "UserLogin"
	operationUserMe         = "UserMe"
	operationCampaign       = "Campaign"
	operationVerifyActivity = "VerifyActivity"
)

const userLoginMutation = `mutation UserLogin($data: UserLoginInput!) {
  userLogin(data: $data)
}`

const userMeQuery = `query UserMe($campaignId: String!) {
  userMe {
    campaignSpot(campaignId: $campaignId) {
      points
      records {
        id
        status
        createdAt
      }
    }
  }
}`

const campaignQuery = `fragment ActivityFields on CampaignActivity {
  id
  title
  createdAt
  records {
    id
    status
    createdAt
    __typename
  }
  __typename
}
query Campaign($campaignId: String!) {
  campaign(id: $campaignId) {
    activities {
      ...ActivityFields
      __typename
    }
    __typename
  }
}`

const verifyActivityMutation = `mutation VerifyActivity($data: VerifyActivityInput!) {
  verifyActivity(data: $data) {
    record {
      id
      activityId
      status
      properties
      createdAt
      __typename
    }
    missionRecord {
      id
      missionId
      status
      createdAt
      __typename
    }
    __typename
  }
}`
